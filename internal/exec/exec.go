package exec

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rootsploit/autoscope/internal/debug"
)

// DefaultTimeout bounds a command when the caller gives no timeout.
const DefaultTimeout = 5 * time.Minute

var (
	runningProcesses = make(map[int]*exec.Cmd)
	processMu        sync.Mutex
)

func trackProcess(cmd *exec.Cmd) {
	if cmd.Process != nil {
		processMu.Lock()
		runningProcesses[cmd.Process.Pid] = cmd
		processMu.Unlock()
	}
}

func untrackProcess(cmd *exec.Cmd) {
	if cmd.Process != nil {
		processMu.Lock()
		delete(runningProcesses, cmd.Process.Pid)
		processMu.Unlock()
	}
}

// KillAllProcesses terminates every tracked tool together with its process group.
func KillAllProcesses() {
	processMu.Lock()
	defer processMu.Unlock()

	for pid, cmd := range runningProcesses {
		if cmd.Process != nil {
			syscall.Kill(-pid, syscall.SIGKILL)
			cmd.Process.Kill()
		}
	}
	runningProcesses = make(map[int]*exec.Cmd)
}

// Result is the outcome of one subprocess.
type Result struct {
	Stdout, Stderr string
	ExitCode       int
	Duration       time.Duration
	TimedOut       bool
	Error          error
}

// Success reports a clean zero exit.
func (r *Result) Success() bool {
	return r.Error == nil && !r.TimedOut && r.ExitCode == 0
}

type Options struct {
	Timeout time.Duration
	Dir     string
}

// Run executes name with args and waits for it to exit or for the timeout to expire.
// The child gets its own process group so a timeout also kills anything it spawned.
func Run(ctx context.Context, name string, args []string, opts *Options) *Result {
	if opts == nil {
		opts = &Options{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := debug.LogStart(name, args)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	// CommandContext only kills the leader; take the whole group down on timeout
	cmd.Cancel = func() error {
		if cmd.Process != nil {
			syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		return nil
	}
	cmd.WaitDelay = 2 * time.Second

	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Start()
	if err == nil {
		trackProcess(cmd)
		err = cmd.Wait()
		untrackProcess(cmd)
	}

	r := &Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: time.Since(start),
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		r.TimedOut = true
	}
	if err != nil {
		r.Error = err
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			r.ExitCode = exitErr.ExitCode()
		} else {
			r.ExitCode = -1
		}
	}

	debug.LogEnd(name, args, start, r.Error, len(Lines(r.Stdout)))
	return r
}

func Lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
