package pipeline

import (
	"context"
	"sync"

	"github.com/rootsploit/autoscope/internal/module"
)

// Registry collects the artifacts of modules that succeeded so later modules
// can resolve their inputs.
type Registry struct {
	mu        sync.RWMutex
	artifacts module.Inputs
}

func NewRegistry() *Registry {
	return &Registry{artifacts: make(module.Inputs)}
}

func (r *Registry) Register(a *module.Artifact) {
	if a == nil {
		return
	}
	r.mu.Lock()
	r.artifacts[a.Kind] = a
	r.mu.Unlock()
}

func (r *Registry) Get(kind module.Kind) (*module.Artifact, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.artifacts[kind]
	return a, ok
}

// Inputs returns a snapshot of the registered artifacts.
func (r *Registry) Inputs() module.Inputs {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in := make(module.Inputs, len(r.artifacts))
	for k, v := range r.artifacts {
		in[k] = v
	}
	return in
}

// Resumer supplies an artifact from an earlier run so a module can be skipped.
type Resumer interface {
	Resume(ctx context.Context, m module.Module) (*module.Artifact, bool)
}

// ResumeFunc adapts a plain function to Resumer.
type ResumeFunc func(ctx context.Context, m module.Module) (*module.Artifact, bool)

func (f ResumeFunc) Resume(ctx context.Context, m module.Module) (*module.Artifact, bool) {
	return f(ctx, m)
}
