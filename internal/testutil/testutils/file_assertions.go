package testutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FileAssertions checks files beneath an output directory.
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates a new file assertions helper.
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

func (fa *FileAssertions) read(rel string) (string, bool) {
	fa.t.Helper()
	// #nosec G304 - test helper, paths are controlled by test code
	content, err := os.ReadFile(filepath.Join(fa.baseDir, filepath.FromSlash(rel)))
	if err != nil {
		fa.t.Errorf("Failed to read %s: %v", rel, err)
		return "", false
	}
	return string(content), true
}

// Exists fails unless every rel names a regular file.
func (fa *FileAssertions) Exists(rels ...string) *FileAssertions {
	fa.t.Helper()
	for _, rel := range rels {
		info, err := os.Stat(filepath.Join(fa.baseDir, filepath.FromSlash(rel)))
		switch {
		case err != nil:
			fa.t.Errorf("Expected file to exist: %s", rel)
		case info.IsDir():
			fa.t.Errorf("Expected %s to be a file, but it's a directory", rel)
		}
	}
	return fa
}

// Missing fails if rel exists.
func (fa *FileAssertions) Missing(rel string) *FileAssertions {
	fa.t.Helper()
	if _, err := os.Stat(filepath.Join(fa.baseDir, filepath.FromSlash(rel))); err == nil {
		fa.t.Errorf("Expected %s not to exist", rel)
	}
	return fa
}

// Contains fails unless rel contains want.
func (fa *FileAssertions) Contains(rel, want string) *FileAssertions {
	fa.t.Helper()
	if content, ok := fa.read(rel); ok && !strings.Contains(content, want) {
		fa.t.Errorf("Expected %s to contain %q\nActual content:\n%s", rel, want, content)
	}
	return fa
}

// NotContains fails if rel contains unwanted.
func (fa *FileAssertions) NotContains(rel, unwanted string) *FileAssertions {
	fa.t.Helper()
	if content, ok := fa.read(rel); ok && strings.Contains(content, unwanted) {
		fa.t.Errorf("Expected %s not to contain %q", rel, unwanted)
	}
	return fa
}
