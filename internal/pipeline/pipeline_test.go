package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rootsploit/autoscope/internal/config"
	"github.com/rootsploit/autoscope/internal/console"
	"github.com/rootsploit/autoscope/internal/module"
	"github.com/rootsploit/autoscope/internal/testutil"
	"github.com/rootsploit/autoscope/internal/tools"
)

func newEnv(t *testing.T) (*module.Env, *bytes.Buffer) {
	var buf bytes.Buffer
	con := console.New(&buf)
	return &module.Env{
		Target:  "example.com",
		WorkDir: t.TempDir(),
		Profile: config.Profile{Timeout: 5 * time.Second},
		Runner:  module.NewCommandRunner(5*time.Second, con),
		Checker: tools.NewChecker(),
		Console: con,
	}, &buf
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"all", Filter{}, "subdomain,ports,http_probe,js_discovery,dir_bruteforce,param_discovery,screenshot"},
		{"only subdomains", Filter{OnlySubdomains: true, NoDirs: true}, "subdomain"},
		{"no dirs", Filter{NoDirs: true}, "subdomain,ports,http_probe,js_discovery,param_discovery,screenshot"},
		{"no screenshots", Filter{NoScreenshots: true}, "subdomain,ports,http_probe,js_discovery,dir_bruteforce,param_discovery"},
		{"no dirs or screenshots", Filter{NoDirs: true, NoScreenshots: true}, "subdomain,ports,http_probe,js_discovery,param_discovery"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strings.Join(Names(Build(tt.filter)), ","); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPhaseNamesCoverAllKinds(t *testing.T) {
	for _, k := range module.Kinds() {
		if PhaseName[k] == "" {
			t.Errorf("Missing display name for %s", k)
		}
	}
}

func TestExecuteOnlySubdomains(t *testing.T) {
	bin := testutil.BinDir(t, false)
	testutil.FakeTool(t, bin, "subfinder", `echo a.example.com`)
	env, out := newEnv(t)

	outcomes := NewExecutor(env, Build(Filter{OnlySubdomains: true})).Execute(context.Background())
	if len(outcomes) != 1 {
		t.Fatalf("Expected one outcome, got %d", len(outcomes))
	}
	if outcomes[0].State != StateSuccess {
		t.Errorf("Expected success, got %s (%v)", outcomes[0].State, outcomes[0].Err)
	}
	if !strings.Contains(out.String(), "Executing module: subdomain") {
		t.Errorf("Expected execution line, got %q", out.String())
	}

	entries, _ := os.ReadDir(env.WorkDir)
	if len(entries) != 1 || entries[0].Name() != "subs.txt" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected only subs.txt, got %v", names)
	}
}

func TestExecuteContinuesAfterFailure(t *testing.T) {
	bin := testutil.BinDir(t, false)
	testutil.FakeTool(t, bin, "subfinder", `echo "rate limited" >&2; exit 1`)
	testutil.FakeTool(t, bin, "naabu", `echo example.com:443`)
	testutil.FakeTool(t, bin, "httpx", `echo should-not-run`)
	env, _ := newEnv(t)

	var seen []string
	exe := NewExecutor(env, Build(Filter{NoDirs: true, NoScreenshots: true})).
		OnOutcome(func(o Outcome) { seen = append(seen, o.Name) })
	outcomes := exe.Execute(context.Background())

	want := map[string]State{
		"subdomain":       StateFailure,
		"ports":           StateSuccess,
		"http_probe":      StateDependencyMissing,
		"js_discovery":    StateToolMissing,
		"param_discovery": StateToolMissing,
	}
	if len(outcomes) != len(want) {
		t.Fatalf("Expected %d outcomes, got %d", len(want), len(outcomes))
	}
	for _, o := range outcomes {
		if o.State != want[o.Name] {
			t.Errorf("%s: expected %s, got %s (%v)", o.Name, want[o.Name], o.State, o.Err)
		}
	}
	if len(seen) != len(outcomes) {
		t.Errorf("Expected hook per outcome, got %v", seen)
	}
	if testutil.Exists(filepath.Join(env.WorkDir, "httpx.txt")) {
		t.Error("http_probe must not run without subdomains")
	}
	if _, ok := exe.Registry().Get(module.KindPorts); !ok {
		t.Error("Expected ports artifact to be registered")
	}
}

func TestExecuteResume(t *testing.T) {
	bin := testutil.BinDir(t, false)
	testutil.FakeTool(t, bin, "subfinder", `echo "must not run" >&2; exit 1`)
	testutil.FakeTool(t, bin, "httpx", `echo https://a.example.com`)
	env, out := newEnv(t)
	subs := testutil.WriteFile(t, env.WorkDir, "subs.txt", "a.example.com\n")

	resumer := ResumeFunc(func(ctx context.Context, m module.Module) (*module.Artifact, bool) {
		if m.Kind() != module.KindSubdomain {
			return nil, false
		}
		return &module.Artifact{Kind: module.KindSubdomain, Path: subs}, true
	})
	mods := []module.Module{Build(Filter{})[0], Build(Filter{})[2]}
	outcomes := NewExecutor(env, mods).WithResume(resumer).Execute(context.Background())

	if outcomes[0].State != StateResumed {
		t.Errorf("Expected subdomain resumed, got %s", outcomes[0].State)
	}
	if outcomes[1].State != StateSuccess {
		t.Errorf("Expected http_probe to use resumed input, got %s (%v)", outcomes[1].State, outcomes[1].Err)
	}
	if !strings.Contains(out.String(), "Resuming subdomain") {
		t.Errorf("Expected resume line, got %q", out.String())
	}
}

func TestExecuteCancelled(t *testing.T) {
	testutil.BinDir(t, false)
	env, _ := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := NewExecutor(env, Build(Filter{})).Execute(ctx)
	for _, o := range outcomes {
		if o.State != StateNotStarted {
			t.Errorf("%s: expected %s, got %s", o.Name, StateNotStarted, o.State)
		}
	}
}
