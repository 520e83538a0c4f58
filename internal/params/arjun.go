// Package params discovers hidden HTTP parameters on the target's root URL.
package params

import (
	"context"

	"github.com/rootsploit/autoscope/internal/module"
	"github.com/rootsploit/autoscope/internal/tools"
)

const OutputFile = "params.txt"

type Finder struct{}

func NewFinder() *Finder { return &Finder{} }

func (f *Finder) Kind() module.Kind       { return module.KindParamDiscovery }
func (f *Finder) Name() string            { return module.KindParamDiscovery.String() }
func (f *Finder) Output() string          { return OutputFile }
func (f *Finder) Tool() tools.Tool        { return tools.Arjun }
func (f *Finder) Requires() []module.Kind { return nil }

func (f *Finder) Command(target, tmp string) module.Command {
	return module.Command{
		Name:     tools.Arjun.Binary,
		Args:     []string{"-u", "https://" + target, "--stable", "-oT", tmp},
		Artifact: tmp,
	}
}

func (f *Finder) Run(ctx context.Context, env *module.Env, _ module.Inputs) (*module.Artifact, error) {
	dest := env.OutputPath(f)
	if err := env.Runner.Run(ctx, f.Name(), f.Command(env.Target, env.PartialPath(f)), dest); err != nil {
		return nil, err
	}
	return &module.Artifact{Kind: f.Kind(), Path: dest}, nil
}
