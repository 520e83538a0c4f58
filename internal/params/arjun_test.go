package params

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rootsploit/autoscope/internal/console"
	"github.com/rootsploit/autoscope/internal/module"
	"github.com/rootsploit/autoscope/internal/testutil"
	"github.com/rootsploit/autoscope/internal/tools"
)

func newEnv(t *testing.T) *module.Env {
	con := console.New(&bytes.Buffer{})
	return &module.Env{
		Target:  "example.com",
		WorkDir: t.TempDir(),
		Runner:  module.NewCommandRunner(5*time.Second, con),
		Checker: tools.NewChecker(),
		Console: con,
	}
}

func TestCommand(t *testing.T) {
	got := NewFinder().Command("example.com", "/tmp/p").String()
	if got != "arjun -u https://example.com --stable -oT /tmp/p" {
		t.Errorf("Unexpected command %q", got)
	}
}

func TestRun(t *testing.T) {
	bin := testutil.BinDir(t, false)
	// the -oT value arrives as $5
	testutil.FakeTool(t, bin, "arjun", `echo "[*] Probing"; printf 'https://example.com?debug=&id=\n' > "$5"`)
	env := newEnv(t)

	a, err := module.Execute(context.Background(), NewFinder(), env, module.Inputs{})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if a.Path != filepath.Join(env.WorkDir, OutputFile) {
		t.Errorf("Unexpected artifact path %s", a.Path)
	}
	if got := testutil.ReadFile(t, a.Path); got != "https://example.com?debug=&id=\n" {
		t.Errorf("Expected arjun output, got %q", got)
	}
}

func TestRunFailureLeavesNothing(t *testing.T) {
	bin := testutil.BinDir(t, false)
	testutil.FakeTool(t, bin, "arjun", `printf 'half' > "$5"; echo "connection refused" >&2; exit 1`)
	env := newEnv(t)

	_, err := module.Execute(context.Background(), NewFinder(), env, module.Inputs{})
	if module.KindOf(err) != module.ErrNonZeroExit {
		t.Fatalf("Expected %s, got %v", module.ErrNonZeroExit, err)
	}
	if testutil.Exists(filepath.Join(env.WorkDir, OutputFile)) {
		t.Error("Expected no params.txt after failure")
	}
}
