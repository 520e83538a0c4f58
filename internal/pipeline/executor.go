package pipeline

import (
	"context"
	"time"

	"github.com/rootsploit/autoscope/internal/module"
)

// State is where a module ended up in its lifecycle.
type State string

const (
	StateNotStarted        State = "not_started"
	StateToolMissing       State = "tool_missing"
	StateDependencyMissing State = "dependency_missing"
	StateRunning           State = "running"
	StateSuccess           State = "success"
	StateFailure           State = "failure"
	StateResumed           State = "resumed"
)

// Succeeded reports whether the module left a usable artifact.
func (s State) Succeeded() bool {
	return s == StateSuccess || s == StateResumed
}

// Outcome records what happened to one module.
type Outcome struct {
	Kind     module.Kind
	Name     string
	State    State
	Artifact *module.Artifact
	Err      error
	Duration time.Duration
	Warnings []string
}

// Hook is called after each module finishes.
type Hook func(Outcome)

// Executor runs modules strictly in order. A failing module never stops the run.
type Executor struct {
	env      *module.Env
	modules  []module.Module
	registry *Registry
	resumer  Resumer
	hooks    []Hook
}

func NewExecutor(env *module.Env, mods []module.Module) *Executor {
	return &Executor{
		env:      env,
		modules:  mods,
		registry: NewRegistry(),
	}
}

// WithResume lets modules with a still-present artifact from an earlier run be skipped.
func (e *Executor) WithResume(r Resumer) *Executor {
	e.resumer = r
	return e
}

// OnOutcome registers h to observe every outcome as it is produced.
func (e *Executor) OnOutcome(h Hook) *Executor {
	e.hooks = append(e.hooks, h)
	return e
}

func (e *Executor) Registry() *Registry { return e.registry }

// Execute runs every module and returns one outcome per module, in order.
// Modules not reached because ctx was cancelled are reported as not started.
func (e *Executor) Execute(ctx context.Context) []Outcome {
	outcomes := make([]Outcome, 0, len(e.modules))
	for _, m := range e.modules {
		var o Outcome
		if ctx.Err() != nil {
			o = Outcome{Kind: m.Kind(), Name: m.Name(), State: StateNotStarted, Err: ctx.Err()}
		} else {
			o = e.executeOne(ctx, m)
		}
		outcomes = append(outcomes, o)
		for _, h := range e.hooks {
			h(o)
		}
	}
	return outcomes
}

func (e *Executor) executeOne(ctx context.Context, m module.Module) Outcome {
	o := Outcome{Kind: m.Kind(), Name: m.Name(), State: StateNotStarted}

	if e.resumer != nil {
		if a, ok := e.resumer.Resume(ctx, m); ok && a.Exists() {
			e.env.Console.Info("Resuming %s: reusing %s", m.Name(), a.Path)
			e.registry.Register(a)
			o.State = StateResumed
			o.Artifact = a
			return o
		}
	}

	e.env.Console.Info("Executing module: %s", m.Name())
	start := time.Now()
	o.State = StateRunning
	a, err := module.Execute(ctx, m, e.env, e.registry.Inputs())
	o.Duration = time.Since(start)

	if err != nil {
		o.Err = err
		o.State = stateFor(err)
		return o
	}

	if a == nil {
		a = &module.Artifact{Kind: m.Kind(), Path: e.env.OutputPath(m)}
	}
	o.State = StateSuccess
	o.Artifact = a
	o.Warnings = a.Warnings
	e.registry.Register(a)
	return o
}

func stateFor(err error) State {
	switch module.KindOf(err) {
	case module.ErrToolMissing:
		return StateToolMissing
	case module.ErrDependencyMissing:
		return StateDependencyMissing
	}
	return StateFailure
}
