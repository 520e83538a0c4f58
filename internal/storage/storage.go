package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Storage is the file layer the report generator reads module outputs through.
type Storage interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// Size returns the byte size of a file
	Size(ctx context.Context, path string) (int64, error)

	// List returns the regular files directly under dir whose names match pattern, sorted
	List(ctx context.Context, dir, pattern string) ([]string, error)

	// BaseDir returns the root storage directory
	BaseDir() string
}

// LocalStorage implements Storage on the local filesystem, rooted at a scan's working directory.
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

func (s *LocalStorage) BaseDir() string {
	return s.baseDir
}

func (s *LocalStorage) Write(ctx context.Context, path string, data []byte) error {
	fullPath := filepath.Join(s.baseDir, path)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, 0644)
}

func (s *LocalStorage) Read(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.baseDir, path))
}

func (s *LocalStorage) Size(ctx context.Context, path string) (int64, error) {
	info, err := os.Stat(filepath.Join(s.baseDir, path))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// List does not descend into subdirectories.
func (s *LocalStorage) List(ctx context.Context, dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, dir))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ok, err := filepath.Match(pattern, e.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// GenerateScanID returns a short, readable scan identifier (first 8 hex chars of a UUID).
func GenerateScanID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
