package tools

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
)

type ToolStatus struct {
	Tool      Tool
	Installed bool
	Path      string
	Version   string
}

// Semver parses the reported version, or returns nil when it has none.
func (s ToolStatus) Semver() *semver.Version {
	v, err := ParseVersion(s.Version)
	if err != nil {
		return nil
	}
	return v
}

type Checker struct{}

func NewChecker() *Checker { return &Checker{} }

// IsInstalled is the tool-presence probe every module runs before doing work.
func (c *Checker) IsInstalled(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// CheckAll probes the given tools in parallel, keeping input order.
func (c *Checker) CheckAll(ctx context.Context, list []Tool) []ToolStatus {
	out := make([]ToolStatus, len(list))
	var wg sync.WaitGroup
	for i, t := range list {
		wg.Add(1)
		go func(idx int, tool Tool) {
			defer wg.Done()
			out[idx] = c.check(ctx, tool)
		}(i, t)
	}
	wg.Wait()
	return out
}

func (c *Checker) check(ctx context.Context, t Tool) ToolStatus {
	s := ToolStatus{Tool: t}
	path, err := exec.LookPath(t.Binary)
	if err != nil {
		return s
	}
	s.Installed = true
	s.Path = path
	s.Version = c.Version(ctx, t)
	return s
}

// Version asks t for its version, starting with its own VersionFlag and then
// the flags recon tools commonly accept. The bare "version" subcommand comes
// last since tools like curl treat it as a host name.
// It returns the first line that contains a version number, or "".
func (c *Checker) Version(ctx context.Context, t Tool) string {
	for _, flag := range VersionFlags(t) {
		if v := c.versionWith(ctx, t.Binary, flag); v != "" {
			return v
		}
	}
	return ""
}

// VersionFlags lists the flags Version tries for t, in order, without repeats.
func VersionFlags(t Tool) []string {
	var flags []string
	seen := make(map[string]bool)
	for _, f := range []string{t.VersionFlag, "--version", "-version", "version"} {
		if f != "" && !seen[f] {
			seen[f] = true
			flags = append(flags, f)
		}
	}
	return flags
}

func (c *Checker) versionWith(ctx context.Context, bin, flag string) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// several projectdiscovery tools print their version on stderr
	out, _ := exec.CommandContext(ctx, bin, flag).CombinedOutput()
	for _, line := range strings.Split(string(out), "\n") {
		if versionPattern.MatchString(line) {
			v := strings.TrimSpace(line)
			if len(v) > 60 {
				v = v[:60] + "..."
			}
			return v
		}
	}
	return ""
}

var versionPattern = regexp.MustCompile(`v?(\d+)\.(\d+)(?:\.(\d+))?`)

// ParseVersion extracts the first semantic version embedded in s,
// e.g. "gowitness: 3.0.5" or "Current Version: v2.3.1".
func ParseVersion(s string) (*semver.Version, error) {
	m := versionPattern.FindString(s)
	if m == "" {
		return nil, semver.ErrInvalidSemVer
	}
	return semver.NewVersion(m)
}
