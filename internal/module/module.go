// Package module defines the contract every pipeline stage implements, the
// typed artifacts stages hand to each other, and the command runner they use
// to drive external tools.
package module

import (
	"context"
	"path/filepath"

	"github.com/rootsploit/autoscope/internal/config"
	"github.com/rootsploit/autoscope/internal/console"
	"github.com/rootsploit/autoscope/internal/tools"
)

// Module is one pipeline stage wrapping a single external tool.
type Module interface {
	Kind() Kind
	Name() string
	// Output is the file (or directory) name the stage owns inside the working directory
	Output() string
	Tool() tools.Tool
	// Requires lists stages whose artifacts must exist before Run
	Requires() []Kind
	// Run does the work. Callers go through Execute, which gates it.
	Run(ctx context.Context, env *Env, in Inputs) (*Artifact, error)
}

// Env is the read-only context shared by all stages of one run.
type Env struct {
	Target   string
	WorkDir  string
	Profile  config.Profile
	Wordlist string
	Runner   *CommandRunner
	Checker  *tools.Checker
	Console  *console.Console
}

// OutputPath is where m writes its artifact.
func (e *Env) OutputPath(m Module) string {
	return filepath.Join(e.WorkDir, m.Output())
}

// PartialPath is a scratch location for tools that write their own output
// file; the runner moves it into place only after a clean exit.
func (e *Env) PartialPath(m Module) string {
	return filepath.Join(e.WorkDir, "."+m.Output()+".partial")
}

// CheckAvailable is the tool-presence probe.
func CheckAvailable(m Module, c *tools.Checker) error {
	t := m.Tool()
	if c.IsInstalled(t.Binary) {
		return nil
	}
	return Errorf(ErrToolMissing, m.Name(), "%s not found in PATH", t.Binary)
}

// Execute runs m only after its tool is present and its upstream artifacts exist.
// Missing tools print install guidance; missing inputs print why the stage is skipped.
func Execute(ctx context.Context, m Module, env *Env, in Inputs) (*Artifact, error) {
	if err := CheckAvailable(m, env.Checker); err != nil {
		env.Console.Error("%s not found. Please install it and add to PATH.", m.Tool().Binary)
		env.Console.Error("%s", m.Tool().Guidance())
		return nil, err
	}

	for _, dep := range m.Requires() {
		if _, err := in.Path(dep); err != nil {
			env.Console.Info("Skipping %s: %s output not found", m.Name(), dep)
			if me, ok := err.(*Error); ok {
				me.Module = m.Name()
			}
			return nil, err
		}
	}

	return m.Run(ctx, env, in)
}
