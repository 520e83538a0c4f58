package module

import (
	"fmt"
	"os"
)

// Artifact is the typed handle a successful module hands to later stages.
type Artifact struct {
	Kind Kind
	Path string
	// Dir is set when Path is a directory of files rather than one file
	Dir bool
	// Related holds secondary files the module produced next to Path
	Related []string
	// Warnings are non-fatal problems met after the tool itself succeeded
	Warnings []string
}

// Exists reports whether the artifact is still on disk.
func (a *Artifact) Exists() bool {
	if a == nil || a.Path == "" {
		return false
	}
	info, err := os.Stat(a.Path)
	if err != nil {
		return false
	}
	return info.IsDir() == a.Dir
}

// Inputs carries the artifacts of earlier stages into a module.
type Inputs map[Kind]*Artifact

// Path returns the upstream artifact path for kind, or a dependency error
// when that stage never produced it or its file has since disappeared.
func (in Inputs) Path(kind Kind) (string, error) {
	a, ok := in[kind]
	if !ok || a == nil {
		return "", Errorf(ErrDependencyMissing, "", "%s output not available", kind)
	}
	if !a.Exists() {
		return "", newError(ErrDependencyMissing, "", fmt.Sprintf("%s output not found", kind), os.ErrNotExist)
	}
	return a.Path, nil
}
