package screenshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/rootsploit/autoscope/internal/httpprobe"
	"github.com/rootsploit/autoscope/internal/module"
	"github.com/rootsploit/autoscope/internal/tools"
)

const (
	OutputDir = "screenshots"
	URLsFile  = "urls.txt"
	LogFile   = "gowitness.log"
)

// summaryFiles are what gowitness leaves behind in its working directory:
// a JSON Lines file for v3 and a SQLite database for v2.
var summaryFiles = []string{"gowitness.jsonl", "gowitness.sqlite3"}

// v3Constraint selects the `scan file` command line.
var v3Constraint, _ = semver.NewConstraint(">= 3.0.0-0")

// Capturer screenshots every live URL httpx found.
type Capturer struct{}

func NewCapturer() *Capturer { return &Capturer{} }

func (c *Capturer) Kind() module.Kind       { return module.KindScreenshot }
func (c *Capturer) Name() string            { return module.KindScreenshot.String() }
func (c *Capturer) Output() string          { return OutputDir }
func (c *Capturer) Tool() tools.Tool        { return tools.Gowitness }
func (c *Capturer) Requires() []module.Kind { return []module.Kind{module.KindHTTPProbe} }

// UseV3 reports whether the installed gowitness speaks the v3 CLI. Versions
// that cannot be parsed are treated as current.
func UseV3(version string) bool {
	v, err := tools.ParseVersion(version)
	if err != nil {
		return true
	}
	return v3Constraint.Check(v)
}

// Command builds the gowitness invocation. It runs inside dir so the
// tool's own summary file lands next to the screenshots.
func (c *Capturer) Command(urlsFile, dir string, v3 bool) module.Command {
	var args []string
	if v3 {
		args = []string{"scan", "file", "-f", urlsFile, "--screenshot-path", dir, "--write-jsonl"}
	} else {
		args = []string{"file", "-f", urlsFile, "-P", dir}
	}
	return module.Command{Name: tools.Gowitness.Binary, Args: args, Dir: dir}
}

func (c *Capturer) Run(ctx context.Context, env *module.Env, in module.Inputs) (*module.Artifact, error) {
	probe, err := in.Path(module.KindHTTPProbe)
	if err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(env.OutputPath(c))
	if err != nil {
		return nil, module.Wrap(module.ErrExec, c.Name(), err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, module.Wrap(module.ErrExec, c.Name(), fmt.Errorf("failed to create screenshot directory: %w", err))
	}

	urls, err := httpprobe.URLs(probe)
	if err != nil {
		return nil, module.Wrap(module.ErrExec, c.Name(), err)
	}
	urlsFile := filepath.Join(dir, URLsFile)
	if err := os.WriteFile(urlsFile, []byte(strings.Join(urls, "\n")+"\n"), 0644); err != nil {
		return nil, module.Wrap(module.ErrExec, c.Name(), err)
	}

	version := env.Checker.Version(ctx, tools.Gowitness)
	v3 := UseV3(version)
	env.Console.Debug("gowitness version %q, v3 syntax: %v", version, v3)

	logPath := filepath.Join(dir, LogFile)
	if err := env.Runner.Run(ctx, c.Name(), c.Command(urlsFile, dir, v3), logPath); err != nil {
		return nil, err
	}

	art := &module.Artifact{Kind: c.Kind(), Path: dir, Dir: true, Related: []string{urlsFile, logPath}}
	if summary := findSummary(dir); summary != "" {
		art.Related = append(art.Related, summary)
	} else {
		msg := fmt.Sprintf("gowitness wrote no summary (%s) in %s", strings.Join(summaryFiles, " or "), dir)
		env.Console.Warn("%s", msg)
		art.Warnings = append(art.Warnings, msg)
	}

	clusters, err := ClusterDir(dir)
	if err != nil {
		werr := module.Wrap(module.ErrPostProcess, c.Name(), err)
		env.Console.Warn("Screenshot clustering failed: %v", werr)
		art.Warnings = append(art.Warnings, werr.Error())
	} else if len(clusters) > 0 {
		clustersPath := filepath.Join(dir, ClustersFile)
		if err := WriteClusters(clustersPath, clusters); err != nil {
			werr := module.Wrap(module.ErrPostProcess, c.Name(), err)
			env.Console.Warn("Failed to save screenshot clusters: %v", werr)
			art.Warnings = append(art.Warnings, werr.Error())
		} else {
			env.Console.Info("Grouped similar screenshots into %d cluster(s): %s", len(clusters), clustersPath)
			art.Related = append(art.Related, clustersPath)
		}
	}
	return art, nil
}

func findSummary(dir string) string {
	for _, name := range summaryFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
