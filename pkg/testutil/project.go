package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// MinimalPipfile is a manifest with a single source and no packages.
const MinimalPipfile = `[[source]]
url = "https://pypi.org/simple"
verify_ssl = true
name = "pypi"

[packages]

[dev-packages]
`

// WriteFile writes content under dir and returns the full path.
//
// Parameters:
//   - t: Testing instance for helper marking and failure reporting
//   - dir: Directory to write into
//   - name: File name, may contain subdirectories
//   - content: File content
//
// Returns:
//   - string: Absolute path of the written file
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if sub := filepath.Dir(path); sub != dir {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", sub, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// ProjectDir creates a temp project directory containing a Pipfile with
// the given content and returns the directory path.
//
// Parameters:
//   - t: Testing instance
//   - pipfile: Manifest content; MinimalPipfile is a reasonable default
//
// Returns:
//   - string: The project directory
func ProjectDir(t *testing.T, pipfile string) string {
	t.Helper()

	dir := t.TempDir()
	WriteFile(t, dir, "Pipfile", pipfile)
	return dir
}
