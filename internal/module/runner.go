package module

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"strings"
	"time"

	"github.com/rootsploit/autoscope/internal/config"
	"github.com/rootsploit/autoscope/internal/console"
	"github.com/rootsploit/autoscope/internal/exec"
)

// Command is one external tool invocation. Args are passed as argv, never through a shell.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Artifact, when set, is a file the tool writes itself; on success it
	// replaces stdout as the content moved to the destination.
	Artifact string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// CommandRunner runs a single command with a wall-clock limit and commits its
// output only after a clean exit.
type CommandRunner struct {
	Timeout time.Duration
	Console *console.Console
}

func NewCommandRunner(timeout time.Duration, c *console.Console) *CommandRunner {
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	if c == nil {
		c = console.Discard()
	}
	return &CommandRunner{Timeout: timeout, Console: c}
}

// Capture runs cmd and returns its result without writing anything.
func (r *CommandRunner) Capture(ctx context.Context, cmd Command) *exec.Result {
	return exec.Run(ctx, cmd.Name, cmd.Args, &exec.Options{Timeout: r.Timeout, Dir: cmd.Dir})
}

// Run executes cmd on behalf of the module called name and writes its output to dest.
// Every failure is returned as *Error and reported on the console; dest is untouched.
func (r *CommandRunner) Run(ctx context.Context, name string, cmd Command, dest string) error {
	if cmd.Artifact != "" {
		os.Remove(cmd.Artifact)
	}

	res := r.Capture(ctx, cmd)
	if err := r.classify(name, res); err != nil {
		if cmd.Artifact != "" {
			os.Remove(cmd.Artifact)
		}
		if _, serr := os.Stat(dest); serr == nil {
			r.Console.Warn("%s left in place from an earlier run: %s", name, dest)
		}
		return err
	}

	if err := r.commit(name, cmd, res, dest); err != nil {
		os.Remove(dest)
		r.Console.Error("Failure in %s: %v", name, err)
		return Wrap(ErrExec, name, err)
	}

	r.Console.Success("Completed %s in %.2fs. Output: %s", name, res.Duration.Seconds(), dest)
	return nil
}

func (r *CommandRunner) classify(name string, res *exec.Result) error {
	if res.TimedOut {
		r.Console.Error("Timeout in %s", name)
		return Errorf(ErrTimeout, name, "command exceeded %s", r.Timeout)
	}
	if res.Error == nil {
		return nil
	}

	var exitErr *osexec.ExitError
	if errors.As(res.Error, &exitErr) {
		stderr := strings.TrimSpace(res.Stderr)
		r.Console.Error("in %s: %s", name, stderr)
		return &Error{Kind: ErrNonZeroExit, Module: name, Msg: fmt.Sprintf("exit status %d", res.ExitCode), Err: res.Error}
	}

	r.Console.Error("Failure in %s: %v", name, res.Error)
	return Wrap(ErrExec, name, res.Error)
}

func (r *CommandRunner) commit(name string, cmd Command, res *exec.Result, dest string) error {
	if cmd.Artifact == "" {
		return os.WriteFile(dest, []byte(res.Stdout), 0644)
	}

	if _, err := os.Stat(cmd.Artifact); errors.Is(err, os.ErrNotExist) {
		r.Console.Warn("%s exited cleanly without writing output; recording empty result", name)
		return os.WriteFile(dest, nil, 0644)
	}
	return moveFile(cmd.Artifact, dest)
}

// moveFile renames src to dst, copying when they sit on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
