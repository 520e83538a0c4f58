package dirbrute

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rootsploit/autoscope/internal/config"
	"github.com/rootsploit/autoscope/internal/module"
	"github.com/rootsploit/autoscope/internal/tools"
)

const (
	OutputFile   = "dirs.txt"
	MatchCodes   = "200,301"
	WordlistHint = "Download a wordlist (e.g. SecLists Discovery/Web-Content/common.txt) and pass --wordlist or set wordlist in the config file"
)

// Scanner brute-forces paths on https://<target>/ with ffuf.
type Scanner struct{}

func NewScanner() *Scanner { return &Scanner{} }

func (s *Scanner) Kind() module.Kind       { return module.KindDirBruteforce }
func (s *Scanner) Name() string            { return module.KindDirBruteforce.String() }
func (s *Scanner) Output() string          { return OutputFile }
func (s *Scanner) Tool() tools.Tool        { return tools.Ffuf }
func (s *Scanner) Requires() []module.Kind { return nil }

// Command has ffuf write CSV to tmp; the runner moves it into place on success.
func (s *Scanner) Command(target, wordlist, tmp string) module.Command {
	return module.Command{
		Name: tools.Ffuf.Binary,
		Args: []string{
			"-u", "https://" + target + "/FUZZ",
			"-w", wordlist,
			"-mc", MatchCodes,
			"-o", tmp,
			"-of", "csv",
			"-s",
		},
		Artifact: tmp,
	}
}

func (s *Scanner) Run(ctx context.Context, env *module.Env, _ module.Inputs) (*module.Artifact, error) {
	wordlist := env.Wordlist
	if wordlist == "" {
		wordlist = config.DefaultWordlist()
	}
	if err := checkWordlist(wordlist); err != nil {
		env.Console.Error("Wordlist not found at %s", wordlist)
		env.Console.Error("%s", WordlistHint)
		return nil, module.Wrap(module.ErrDependencyMissing, s.Name(), err)
	}

	dest := env.OutputPath(s)
	cmd := s.Command(env.Target, wordlist, env.PartialPath(s))
	if err := env.Runner.Run(ctx, s.Name(), cmd, dest); err != nil {
		return nil, err
	}
	return &module.Artifact{Kind: s.Kind(), Path: dest}, nil
}

func checkWordlist(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &os.PathError{Op: "open", Path: filepath.Clean(path), Err: os.ErrInvalid}
	}
	return nil
}
