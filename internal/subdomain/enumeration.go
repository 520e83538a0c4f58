package subdomain

import (
	"context"

	"github.com/rootsploit/autoscope/internal/config"
	"github.com/rootsploit/autoscope/internal/module"
	"github.com/rootsploit/autoscope/internal/tools"
)

const OutputFile = "subs.txt"

// Enumerator discovers subdomains of the target with subfinder.
type Enumerator struct{}

func NewEnumerator() *Enumerator { return &Enumerator{} }

func (e *Enumerator) Kind() module.Kind       { return module.KindSubdomain }
func (e *Enumerator) Name() string            { return module.KindSubdomain.String() }
func (e *Enumerator) Output() string          { return OutputFile }
func (e *Enumerator) Tool() tools.Tool        { return tools.Subfinder }
func (e *Enumerator) Requires() []module.Kind { return nil }

// Command builds the subfinder invocation. Deep scans query every source.
func (e *Enumerator) Command(target string, p config.Profile) module.Command {
	args := []string{"-d", target, "-silent"}
	if p.Deep {
		args = append(args, "-all")
	}
	return module.Command{Name: tools.Subfinder.Binary, Args: args}
}

func (e *Enumerator) Run(ctx context.Context, env *module.Env, _ module.Inputs) (*module.Artifact, error) {
	dest := env.OutputPath(e)
	if err := env.Runner.Run(ctx, e.Name(), e.Command(env.Target, env.Profile), dest); err != nil {
		return nil, err
	}
	return &module.Artifact{Kind: e.Kind(), Path: dest}, nil
}
