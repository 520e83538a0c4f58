package module

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rootsploit/autoscope/internal/config"
	"github.com/rootsploit/autoscope/internal/console"
	"github.com/rootsploit/autoscope/internal/testutil"
	"github.com/rootsploit/autoscope/internal/tools"
)

type stubModule struct {
	tool     tools.Tool
	requires []Kind
	ran      bool
}

func (s *stubModule) Kind() Kind       { return KindJSDiscovery }
func (s *stubModule) Name() string     { return KindJSDiscovery.String() }
func (s *stubModule) Output() string   { return "endpoints.txt" }
func (s *stubModule) Tool() tools.Tool { return s.tool }
func (s *stubModule) Requires() []Kind { return s.requires }
func (s *stubModule) Run(ctx context.Context, env *Env, in Inputs) (*Artifact, error) {
	s.ran = true
	return &Artifact{Kind: s.Kind(), Path: env.OutputPath(s)}, nil
}

func newTestEnv(t *testing.T) (*Env, *bytes.Buffer) {
	var buf bytes.Buffer
	con := console.New(&buf)
	return &Env{
		Target:  "example.com",
		WorkDir: t.TempDir(),
		Profile: config.Profile{Timeout: time.Second},
		Runner:  NewCommandRunner(time.Second, con),
		Checker: tools.NewChecker(),
		Console: con,
	}, &buf
}

func TestExecuteToolMissing(t *testing.T) {
	testutil.BinDir(t, false)
	env, out := newTestEnv(t)
	m := &stubModule{tool: tools.Tool{Name: "fake", Binary: "fake", Install: "go install fake@latest"}}

	_, err := Execute(context.Background(), m, env, Inputs{})
	if KindOf(err) != ErrToolMissing {
		t.Fatalf("Expected %s, got %v", ErrToolMissing, err)
	}
	if m.ran {
		t.Error("Run must not be called when the tool is missing")
	}
	if !strings.Contains(out.String(), "fake not found. Please install it and add to PATH.") {
		t.Errorf("Expected not-found line, got %q", out.String())
	}
	if !strings.Contains(out.String(), "Install fake via: go install fake@latest") {
		t.Errorf("Expected install guidance, got %q", out.String())
	}
}

func TestExecuteDependencyMissing(t *testing.T) {
	bin := testutil.BinDir(t, false)
	testutil.FakeTool(t, bin, "fake", "exit 0")
	env, out := newTestEnv(t)
	m := &stubModule{tool: tools.Tool{Name: "fake", Binary: "fake"}, requires: []Kind{KindHTTPProbe}}

	_, err := Execute(context.Background(), m, env, Inputs{})
	if KindOf(err) != ErrDependencyMissing {
		t.Fatalf("Expected %s, got %v", ErrDependencyMissing, err)
	}
	if m.ran {
		t.Error("Run must not be called without inputs")
	}
	if !strings.Contains(out.String(), "Skipping js_discovery: http_probe output not found") {
		t.Errorf("Expected skip line, got %q", out.String())
	}
}

func TestExecuteRuns(t *testing.T) {
	bin := testutil.BinDir(t, false)
	testutil.FakeTool(t, bin, "fake", "exit 0")
	env, _ := newTestEnv(t)
	probe := testutil.WriteFile(t, env.WorkDir, "httpx.txt", "https://a.example.com\n")
	m := &stubModule{tool: tools.Tool{Name: "fake", Binary: "fake"}, requires: []Kind{KindHTTPProbe}}

	a, err := Execute(context.Background(), m, env, Inputs{KindHTTPProbe: {Kind: KindHTTPProbe, Path: probe}})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if !m.ran {
		t.Error("Expected Run to be called")
	}
	if a.Path != filepath.Join(env.WorkDir, "endpoints.txt") {
		t.Errorf("Expected artifact in work dir, got %s", a.Path)
	}
}

func TestPartialPath(t *testing.T) {
	env := &Env{WorkDir: "/w"}
	m := &stubModule{}
	if got := env.PartialPath(m); got != "/w/.endpoints.txt.partial" {
		t.Errorf("Expected /w/.endpoints.txt.partial, got %s", got)
	}
}
