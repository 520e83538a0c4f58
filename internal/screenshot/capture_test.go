package screenshot

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rootsploit/autoscope/internal/console"
	"github.com/rootsploit/autoscope/internal/module"
	"github.com/rootsploit/autoscope/internal/testutil"
	"github.com/rootsploit/autoscope/internal/tools"
)

func fakeGowitness(version string, writeSummary bool) string {
	summary := ""
	if writeSummary {
		summary = `case "$1" in scan) : > gowitness.jsonl ;; file) : > gowitness.sqlite3 ;; esac`
	}
	return `if [ "$1" = "version" ]; then echo "gowitness: ` + version + `"; exit 0; fi
echo "args: $*"
` + summary
}

func newEnv(t *testing.T) (*module.Env, *bytes.Buffer) {
	var buf bytes.Buffer
	con := console.New(&buf)
	return &module.Env{
		Target:  "example.com",
		WorkDir: t.TempDir(),
		Runner:  module.NewCommandRunner(5*time.Second, con),
		Checker: tools.NewChecker(),
		Console: con,
	}, &buf
}

func probeInputs(t *testing.T, dir string) module.Inputs {
	p := testutil.WriteFile(t, dir, "httpx.txt", "https://a.example.com [Nginx]\nhttps://b.example.com\n")
	return module.Inputs{module.KindHTTPProbe: {Kind: module.KindHTTPProbe, Path: p}}
}

func TestUseV3(t *testing.T) {
	tests := map[string]bool{
		"gowitness: 3.0.5":           true,
		"v3.1.0":                     true,
		"gowitness: 2.5.1":           false,
		"Version: 2.4.2 (abcdef)":    false,
		"":                           true,
		"something without versions": true,
	}
	for in, want := range tests {
		if got := UseV3(in); got != want {
			t.Errorf("UseV3(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestCommand(t *testing.T) {
	c := NewCapturer()
	v3 := c.Command("/s/urls.txt", "/s", true)
	if v3.String() != "gowitness scan file -f /s/urls.txt --screenshot-path /s --write-jsonl" || v3.Dir != "/s" {
		t.Errorf("Unexpected v3 command %q in %s", v3.String(), v3.Dir)
	}
	v2 := c.Command("/s/urls.txt", "/s", false)
	if v2.String() != "gowitness file -f /s/urls.txt -P /s" {
		t.Errorf("Unexpected v2 command %q", v2.String())
	}
}

func TestRunV3(t *testing.T) {
	bin := testutil.BinDir(t, false)
	testutil.FakeTool(t, bin, "gowitness", fakeGowitness("3.0.5", true))
	env, _ := newEnv(t)

	a, err := module.Execute(context.Background(), NewCapturer(), env, probeInputs(t, env.WorkDir))
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if !a.Dir {
		t.Error("Expected directory artifact")
	}
	dir := a.Path
	if filepath.Base(dir) != OutputDir {
		t.Errorf("Expected %s directory, got %s", OutputDir, dir)
	}
	if got := testutil.ReadFile(t, filepath.Join(dir, URLsFile)); got != "https://a.example.com\nhttps://b.example.com\n" {
		t.Errorf("Unexpected urls.txt %q", got)
	}
	log := testutil.ReadFile(t, filepath.Join(dir, LogFile))
	if !strings.HasPrefix(log, "args: scan file -f ") {
		t.Errorf("Expected v3 invocation, got %q", log)
	}
	if !testutil.Exists(filepath.Join(dir, "gowitness.jsonl")) {
		t.Error("Expected summary in screenshot directory")
	}
	if len(a.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", a.Warnings)
	}
}

func TestRunV2MissingSummary(t *testing.T) {
	bin := testutil.BinDir(t, false)
	testutil.FakeTool(t, bin, "gowitness", fakeGowitness("2.5.1", false))
	env, out := newEnv(t)

	a, err := module.Execute(context.Background(), NewCapturer(), env, probeInputs(t, env.WorkDir))
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	log := testutil.ReadFile(t, filepath.Join(a.Path, LogFile))
	if !strings.HasPrefix(log, "args: file -f ") {
		t.Errorf("Expected v2 invocation, got %q", log)
	}
	if len(a.Warnings) != 1 {
		t.Fatalf("Expected one warning, got %v", a.Warnings)
	}
	if !strings.Contains(out.String(), "[WARN]") {
		t.Errorf("Expected warning line, got %q", out.String())
	}
}

func TestRunRequiresProbe(t *testing.T) {
	bin := testutil.BinDir(t, false)
	testutil.FakeTool(t, bin, "gowitness", fakeGowitness("3.0.5", true))
	env, _ := newEnv(t)

	_, err := module.Execute(context.Background(), NewCapturer(), env, module.Inputs{})
	if module.KindOf(err) != module.ErrDependencyMissing {
		t.Fatalf("Expected %s, got %v", module.ErrDependencyMissing, err)
	}
	if testutil.Exists(filepath.Join(env.WorkDir, OutputDir)) {
		t.Error("Expected no screenshot directory")
	}
}
