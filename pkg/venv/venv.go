// Package venv locates and introspects the Python virtual environment backing
// a project.
//
// Installed-package queries inspect the environment's site-packages directory
// directly. That makes them the ground truth for "is X actually installed"
// assertions, deliberately independent from what the lock file claims.
package venv

import (
	"bufio"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
)

// Environment variables honored by Locate.
const (
	// VirtualEnvVar names an explicitly activated environment.
	VirtualEnvVar = "VIRTUAL_ENV"

	// IgnoreVirtualenvsVar, when set, disables auto-detection of an
	// activated environment. Its absence is the opt-in.
	IgnoreVirtualenvsVar = "PIPENV_IGNORE_VIRTUALENVS"

	// WorkonHomeVar points at the directory where shared environments live.
	WorkonHomeVar = "WORKON_HOME"
)

// ErrNoVirtualenv is returned when no environment can be located for a project.
var ErrNoVirtualenv = errors.New("no virtual environment found")

// Env is a located virtual environment.
//
// Fields:
//   - Root: Absolute path to the environment directory
type Env struct {
	Root string
}

// Locate resolves the virtual environment for a project.
//
// It performs the following operations, first hit wins:
//   - Honors an activated environment (VIRTUAL_ENV) unless the ignore
//     variable is set
//   - Probes the in-project .venv directory
//   - Probes WORKON_HOME for the hash-suffixed entry the tool under test
//     derives for the project (see VirtualenvName)
//
// Parameters:
//   - projectRoot: Project directory containing the manifest
//   - env: Environment for variable lookups; nil means the process environment
//
// Returns:
//   - *Env: The located environment
//   - error: ErrNoVirtualenv (wrapped) when nothing matches
func Locate(projectRoot string, env map[string]string) (*Env, error) {
	lookup := envLookup(env)

	if _, ignored := lookup(IgnoreVirtualenvsVar); !ignored {
		if activated, ok := lookup(VirtualEnvVar); ok && activated != "" {
			if isDir(activated) {
				return &Env{Root: activated}, nil
			}
		}
	}

	local := filepath.Join(projectRoot, ".venv")
	if isDir(local) {
		return &Env{Root: local}, nil
	}

	if workon, ok := lookup(WorkonHomeVar); ok && workon != "" {
		candidate := filepath.Join(workon, VirtualenvName(projectRoot))
		if isDir(candidate) {
			return &Env{Root: candidate}, nil
		}
	}

	return nil, fmt.Errorf("project %s: %w", projectRoot, ErrNoVirtualenv)
}

// VirtualenvName derives the shared-environment directory name the tool
// under test uses for a project.
//
// The name is the sanitized project directory name, truncated to 42
// characters, joined by a dash with the first 8 characters of the URL-safe
// base64 encoding of the leading 6 bytes of the sha256 digest of the
// manifest path. A project at /work/app with its manifest at
// /work/app/Pipfile therefore maps to app-<hash> under WORKON_HOME.
//
// Parameters:
//   - projectRoot: Project directory containing the manifest
//
// Returns:
//   - string: Directory name of the form <name>-<hash>
func VirtualenvName(projectRoot string) string {
	location := filepath.Join(projectRoot, "Pipfile")
	digest := sha256.Sum256([]byte(location))
	encoded := base64.URLEncoding.EncodeToString(digest[:6])
	return sanitizeEnvName(filepath.Base(projectRoot)) + "-" + encoded[:8]
}

// sanitizeEnvName replaces the characters the tool under test refuses in an
// environment name and truncates the result to 42 bytes.
func sanitizeEnvName(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '$', '`', '!', '*', '@', '"', '\\', '\r', '\n', '\t':
			return '_'
		}
		return r
	}, name)
	if len(sanitized) > 42 {
		sanitized = sanitized[:42]
	}
	return sanitized
}

// Interpreter returns the path to the environment's Python executable.
//
// Returns:
//   - string: bin/python on Unix, Scripts/python.exe on Windows
func (e *Env) Interpreter() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.Root, "Scripts", "python.exe")
	}
	return filepath.Join(e.Root, "bin", "python")
}

// InstalledPackages returns the normalized names of packages actually present
// in the environment.
//
// It performs the following operations:
//   - Finds every site-packages directory under the environment root
//   - Collects *.dist-info entries, preferring the Name header of their
//     METADATA file over the directory name
//   - Collects *.egg-link and *.egg-info entries left by editable installs
//
// Returns:
//   - []string: Sorted, de-duplicated, PEP 503-normalized package names
//   - error: Directory scan failure, nil on success
func (e *Env) InstalledPackages() ([]string, error) {
	seen := make(map[string]struct{})

	for _, dir := range e.sitePackagesDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		for _, entry := range entries {
			name := packageNameFromEntry(dir, entry.Name())
			if name == "" {
				continue
			}
			seen[Normalize(name)] = struct{}{}
		}
	}

	packages := make([]string, 0, len(seen))
	for name := range seen {
		packages = append(packages, name)
	}
	sort.Strings(packages)
	return packages, nil
}

// Has reports whether a package is installed in the environment.
//
// Parameters:
//   - name: Package name in any capitalization or separator style
//
// Returns:
//   - bool: true when the normalized name is present
//   - error: Scan failure from InstalledPackages
func (e *Env) Has(name string) (bool, error) {
	packages, err := e.InstalledPackages()
	if err != nil {
		return false, err
	}
	target := Normalize(name)
	for _, pkg := range packages {
		if pkg == target {
			return true, nil
		}
	}
	return false, nil
}

// normalizePattern collapses runs of separators per PEP 503.
var normalizePattern = regexp.MustCompile(`[-_.]+`)

// Normalize converts a package name to its canonical comparison form.
//
// Parameters:
//   - name: Package name as found on disk or declared in a manifest
//
// Returns:
//   - string: Lowercase name with separator runs collapsed to "-"
func Normalize(name string) string {
	return strings.ToLower(normalizePattern.ReplaceAllString(name, "-"))
}

// sitePackagesDirs lists the site-packages directories of the environment.
func (e *Env) sitePackagesDirs() []string {
	var dirs []string

	if matches, err := filepath.Glob(filepath.Join(e.Root, "lib", "python*", "site-packages")); err == nil {
		for _, match := range matches {
			if isDir(match) {
				dirs = append(dirs, match)
			}
		}
	}

	windows := filepath.Join(e.Root, "Lib", "site-packages")
	if isDir(windows) {
		dirs = append(dirs, windows)
	}

	return dirs
}

// packageNameFromEntry extracts a package name from one site-packages entry,
// returning "" for entries that do not identify a distribution.
func packageNameFromEntry(dir, entry string) string {
	switch {
	case strings.HasSuffix(entry, ".dist-info"):
		if name := metadataName(filepath.Join(dir, entry, "METADATA")); name != "" {
			return name
		}
		return strings.SplitN(strings.TrimSuffix(entry, ".dist-info"), "-", 2)[0]
	case strings.HasSuffix(entry, ".egg-link"):
		return strings.TrimSuffix(entry, ".egg-link")
	case strings.HasSuffix(entry, ".egg-info"):
		return strings.SplitN(strings.TrimSuffix(entry, ".egg-info"), "-", 2)[0]
	default:
		return ""
	}
}

// metadataName reads the Name header from a METADATA file, returning "" when
// the file is missing or carries no name.
func metadataName(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			// End of headers.
			return ""
		}
		if name, found := strings.CutPrefix(line, "Name:"); found {
			return strings.TrimSpace(name)
		}
	}
	return ""
}

// isDir reports whether path exists and is a directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// envLookup builds a variable lookup from an explicit map, falling back to
// the process environment when the map is nil.
func envLookup(env map[string]string) func(string) (string, bool) {
	if env == nil {
		return os.LookupEnv
	}
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}
