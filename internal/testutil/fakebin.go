// Package testutil installs fake tool binaries for tests that drive the
// pipeline without the real recon tools.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// BinDir creates an empty directory and makes it the only entry on PATH,
// so tool lookups see exactly the fakes a test installs. When withSystem is
// set, /usr/bin and /bin follow it for scripts that need coreutils.
func BinDir(t *testing.T, withSystem bool) string {
	t.Helper()
	dir := t.TempDir()
	path := dir
	if withSystem {
		path += string(os.PathListSeparator) + "/usr/bin" + string(os.PathListSeparator) + "/bin"
	}
	t.Setenv("PATH", path)
	return dir
}

// FakeTool writes an executable /bin/sh script called name into dir.
// body is the script without the shebang line.
func FakeTool(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("Failed to write fake %s: %v", name, err)
	}
	return p
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", filepath.Dir(p), err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", p, err)
	}
	return p
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
