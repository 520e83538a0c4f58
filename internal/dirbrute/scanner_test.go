package dirbrute

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

const fakeFfuf = `while [ $# -gt 0 ]; do
  case "$1" in
    -o) out="$2"; shift ;;
  esac
  shift
done
echo "progress noise"
printf 'url,status\nhttps://example.com/admin,301\n' > "$out"`

func newEnv(t *testing.T, wordlist string) (*module.Env, *bytes.Buffer) {
	var buf bytes.Buffer
	con := console.New(&buf)
	return &module.Env{
		Target:   "example.com",
		WorkDir:  t.TempDir(),
		Wordlist: wordlist,
		Runner:   module.NewCommandRunner(5*time.Second, con),
		Checker:  tools.NewChecker(),
		Console:  con,
	}, &buf
}

func TestCommand(t *testing.T) {
	got := NewScanner().Command("example.com", "/w/common.txt", "/tmp/out").String()
	want := "ffuf -u https://example.com/FUZZ -w /w/common.txt -mc 200,301 -o /tmp/out -of csv -s"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestRun(t *testing.T) {
	bin := testutil.BinDir(t, false)
	testutil.FakeTool(t, bin, "ffuf", fakeFfuf)
	wl := testutil.WriteFile(t, t.TempDir(), "common.txt", "admin\nlogin\n")
	env, _ := newEnv(t, wl)

	s := NewScanner()
	a, err := module.Execute(context.Background(), s, env, module.Inputs{})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if got := testutil.ReadFile(t, a.Path); got != "url,status\nhttps://example.com/admin,301\n" {
		t.Errorf("Expected ffuf csv, got %q", got)
	}
	if testutil.Exists(env.PartialPath(s)) {
		t.Error("Expected partial file to be moved")
	}
}

func TestRunMissingWordlist(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	bin := testutil.BinDir(t, false)
	testutil.FakeTool(t, bin, "ffuf", fakeFfuf)
	env, out := newEnv(t, "")

	_, err := module.Execute(context.Background(), NewScanner(), env, module.Inputs{})
	if module.KindOf(err) != module.ErrDependencyMissing {
		t.Fatalf("Expected %s, got %v", module.ErrDependencyMissing, err)
	}
	if !strings.Contains(out.String(), "Wordlist not found at") {
		t.Errorf("Expected wordlist error, got %q", out.String())
	}
	if !strings.Contains(out.String(), "--wordlist") {
		t.Errorf("Expected guidance, got %q", out.String())
	}
	if testutil.Exists(filepath.Join(env.WorkDir, OutputFile)) {
		t.Error("Expected ffuf not to run")
	}
}
