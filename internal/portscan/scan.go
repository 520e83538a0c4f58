package portscan

import (
	"context"

	"github.com/rootsploit/autoscope/internal/config"
	"github.com/rootsploit/autoscope/internal/module"
	"github.com/rootsploit/autoscope/internal/tools"
)

const (
	OutputFile = "ports.txt"

	FastPortRange = "1-1000"
	FullPortRange = "1-65535"
)

// Scanner finds open ports on the target with naabu.
type Scanner struct{}

func NewScanner() *Scanner { return &Scanner{} }

func (s *Scanner) Kind() module.Kind       { return module.KindPorts }
func (s *Scanner) Name() string            { return module.KindPorts.String() }
func (s *Scanner) Output() string          { return OutputFile }
func (s *Scanner) Tool() tools.Tool        { return tools.Naabu }
func (s *Scanner) Requires() []module.Kind { return nil }

// PortRange is the narrow top range under the fast profile and every port otherwise.
func PortRange(p config.Profile) string {
	if p.Fast {
		return FastPortRange
	}
	return FullPortRange
}

func (s *Scanner) Command(target string, p config.Profile) module.Command {
	return module.Command{
		Name: tools.Naabu.Binary,
		Args: []string{"-host", target, "-p", PortRange(p), "-silent"},
	}
}

func (s *Scanner) Run(ctx context.Context, env *module.Env, _ module.Inputs) (*module.Artifact, error) {
	dest := env.OutputPath(s)
	if err := env.Runner.Run(ctx, s.Name(), s.Command(env.Target, env.Profile), dest); err != nil {
		return nil, err
	}
	return &module.Artifact{Kind: s.Kind(), Path: dest}, nil
}
