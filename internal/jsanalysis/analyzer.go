package jsanalysis

import (
	"context"
	"io"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/rootsploit/autoscope/internal/httpprobe"
	"github.com/rootsploit/autoscope/internal/module"
	"github.com/rootsploit/autoscope/internal/tools"
)

const OutputFile = "endpoints.txt"

// endpointPattern matches paths that carry a query parameter, e.g. /api/user?id=
var endpointPattern = regexp.MustCompile(`[/\w-]+\?\w+=`)

// Analyzer fetches the JavaScript files httpx found live and scrapes them for
// parameterised endpoints.
type Analyzer struct {
	// Progress receives the fetch progress bar; nil uses the console writer
	Progress io.Writer
}

func NewAnalyzer() *Analyzer { return &Analyzer{} }

func (a *Analyzer) Kind() module.Kind       { return module.KindJSDiscovery }
func (a *Analyzer) Name() string            { return module.KindJSDiscovery.String() }
func (a *Analyzer) Output() string          { return OutputFile }
func (a *Analyzer) Tool() tools.Tool        { return tools.Curl }
func (a *Analyzer) Requires() []module.Kind { return []module.Kind{module.KindHTTPProbe} }

func (a *Analyzer) Run(ctx context.Context, env *module.Env, in module.Inputs) (*module.Artifact, error) {
	probe, err := in.Path(module.KindHTTPProbe)
	if err != nil {
		return nil, err
	}
	lines, err := httpprobe.URLs(probe)
	if err != nil {
		return nil, module.Wrap(module.ErrExec, a.Name(), err)
	}
	scripts := ScriptURLs(lines)

	var bar *progressbar.ProgressBar
	if len(scripts) > 0 {
		bar = a.newBar(env, len(scripts))
	}
	var found []string
	for _, u := range scripts {
		if ctx.Err() != nil {
			break
		}
		res := env.Runner.Capture(ctx, module.Command{Name: tools.Curl.Binary, Args: []string{"-s", u}})
		if !res.Success() {
			env.Console.Debug("js fetch failed for %s: exit=%d err=%v", u, res.ExitCode, res.Error)
		} else {
			found = append(found, ExtractEndpoints(res.Stdout)...)
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	endpoints := Dedupe(found)
	dest := env.OutputPath(a)
	if err := os.WriteFile(dest, []byte(strings.Join(endpoints, "\n")), 0644); err != nil {
		env.Console.Error("Failure in %s: %v", a.Name(), err)
		return nil, module.Wrap(module.ErrExec, a.Name(), err)
	}
	env.Console.Success("Found %d potential endpoints", len(endpoints))

	if len(endpoints) == 0 {
		return nil, module.Errorf(module.ErrNoResults, a.Name(), "no endpoints found in %d script(s)", len(scripts))
	}
	return &module.Artifact{Kind: a.Kind(), Path: dest}, nil
}

func (a *Analyzer) newBar(env *module.Env, n int) *progressbar.ProgressBar {
	w := a.Progress
	if w == nil {
		w = env.Console.Writer()
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription("[cyan]Fetching JS files[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() { io.WriteString(w, "\n") }),
	)
}

// ScriptURLs keeps the URLs whose path ends in .js.
func ScriptURLs(urls []string) []string {
	var out []string
	for _, raw := range urls {
		path := raw
		if u, err := url.Parse(raw); err == nil && u.Path != "" {
			path = u.Path
		}
		if strings.HasSuffix(path, ".js") {
			out = append(out, raw)
		}
	}
	return out
}

// ExtractEndpoints returns every endpoint-looking match in body.
func ExtractEndpoints(body string) []string {
	return endpointPattern.FindAllString(body, -1)
}

// Dedupe returns the unique values of in, sorted.
func Dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
