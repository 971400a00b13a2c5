// Package fixture provides disposable project directories for exercising a
// pipenv-compatible dependency manager. A fixture owns a unique temp
// directory, an environment map wired to the tool under test, and an
// optional local package index, and releases all of it on Close.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pipdrive/pipdrive/pkg/cmdexec"
	"github.com/pipdrive/pipdrive/pkg/config"
	"github.com/pipdrive/pipdrive/pkg/fakeindex"
	"github.com/pipdrive/pipdrive/pkg/textfile"
	"github.com/pipdrive/pipdrive/pkg/verbose"
	"github.com/pipdrive/pipdrive/pkg/warnings"
)

// Fixture is a temporary project directory bound to the tool under test.
//
// Fields are unexported; all mutation happens through options at
// construction time. A Fixture is not safe for concurrent use when created
// with WithChdir, since the process working directory is global.
type Fixture struct {
	root    string
	cfg     *config.Config
	env     map[string]string
	chdir   bool
	prevDir string
	index   *fakeindex.Server
	ownIdx  bool
	closed  bool
}

// Option configures a Fixture during New.
type Option func(*Fixture) error

// WithChdir switches the process working directory into the fixture root
// for the fixture's lifetime. Close restores the previous directory.
func WithChdir() Option {
	return func(f *Fixture) error {
		prev, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to capture working directory: %w", err)
		}
		if err := os.Chdir(f.root); err != nil {
			return fmt.Errorf("failed to enter fixture directory: %w", err)
		}
		f.chdir = true
		f.prevDir = prev
		return nil
	}
}

// WithIndex wires an existing package index URL into the fixture
// environment under the configured test-index variable.
func WithIndex(url string) Option {
	return func(f *Fixture) error {
		f.env[f.cfg.Env.TestIndex] = url
		return nil
	}
}

// WithFakeIndex starts the given fake index server and injects its base
// URL into the fixture environment. The fixture shuts the server down on
// Close.
func WithFakeIndex(srv *fakeindex.Server) Option {
	return func(f *Fixture) error {
		if err := srv.Start(); err != nil {
			return fmt.Errorf("failed to start fake index: %w", err)
		}
		f.index = srv
		f.ownIdx = true
		f.env[f.cfg.Env.TestIndex] = srv.URL()
		return nil
	}
}

// WithEnv sets a single variable in the fixture environment.
func WithEnv(key, value string) Option {
	return func(f *Fixture) error {
		f.env[key] = value
		return nil
	}
}

// WithTool overrides the executable name of the tool under test.
func WithTool(name string) Option {
	return func(f *Fixture) error {
		f.cfg.Tool = name
		return nil
	}
}

// WithConfig uses the given configuration instead of the built-in
// defaults. Must appear before options that read the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(f *Fixture) error {
		if cfg == nil {
			return fmt.Errorf("nil config")
		}
		f.cfg = cfg
		return nil
	}
}

// New creates a fixture in a uniquely named temporary directory.
//
// The fixture environment starts with the ignore-virtualenvs variable set,
// so the tool under test builds its own environment instead of adopting an
// activated one, and with the in-project variable set, so that environment
// lands in the fixture's .venv directory and is removed with the fixture.
// Creation fails fast: if any option errors, everything allocated so far is
// released and no partial fixture is returned.
//
// Parameters:
//   - opts: fixture options, applied in order
//
// Returns:
//   - *Fixture: ready-to-use fixture
//   - error: any error during directory creation or option application
func New(opts ...Option) (*Fixture, error) {
	root, err := os.MkdirTemp("", "pipdrive-project-")
	if err != nil {
		return nil, fmt.Errorf("failed to create fixture directory: %w", err)
	}

	// MkdirTemp may return a symlinked path on some platforms; the tool
	// under test compares resolved paths.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	f := &Fixture{
		root: root,
		cfg:  config.DefaultConfig(),
		env:  map[string]string{},
	}
	f.env[f.cfg.Env.IgnoreVenv] = "1"
	f.env[f.cfg.Env.VenvInProject] = "1"

	for _, opt := range opts {
		if err := opt(f); err != nil {
			f.release()
			return nil, err
		}
	}

	verbose.Infof("Created fixture: %s", f.root)
	return f, nil
}

// Root returns the absolute fixture directory.
func (f *Fixture) Root() string {
	return f.root
}

// PipfilePath returns the manifest path inside the fixture. The path is
// valid before the file exists.
func (f *Fixture) PipfilePath() string {
	return filepath.Join(f.root, f.cfg.Pipfile)
}

// LockfilePath returns the lock file path inside the fixture. The path is
// valid before the file exists.
func (f *Fixture) LockfilePath() string {
	return filepath.Join(f.root, f.cfg.Lockfile)
}

// Env returns a copy of the fixture environment overrides.
func (f *Fixture) Env() map[string]string {
	out := make(map[string]string, len(f.env))
	for k, v := range f.env {
		out[k] = v
	}
	return out
}

// Index returns the attached fake index server, or nil.
func (f *Fixture) Index() *fakeindex.Server {
	return f.index
}

// Pipenv runs the tool under test inside the fixture directory with the
// fixture environment applied.
//
// Parameters:
//   - argline: arguments as a single shell-style string, e.g. "install pytz"
//
// Returns:
//   - *cmdexec.Result: exit code and captured output
//   - error: launch failure or timeout; non-zero exit is not an error
func (f *Fixture) Pipenv(argline string) (*cmdexec.Result, error) {
	runner := cmdexec.New(f.cfg.Tool, f.root)
	runner.Env = f.Env()
	runner.Timeout = f.cfg.Timeout()
	return runner.RunString(argline)
}

// WritePipfile writes the manifest directly, preserving the line-ending
// convention of any existing manifest in the fixture.
//
// Parameters:
//   - content: full manifest text
//
// Returns:
//   - error: any write error
func (f *Fixture) WritePipfile(content string) error {
	return textfile.WriteFilePreserving(f.PipfilePath(), []byte(content), 0o644)
}

// Close releases everything the fixture holds: it restores the process
// working directory, shuts down an attached fake index, and removes the
// temp directory. Close is idempotent.
//
// Returns:
//   - error: the first release error encountered
func (f *Fixture) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.release()
}

// release tears down in reverse order of acquisition. Later steps still
// run when an earlier one fails.
func (f *Fixture) release() error {
	var firstErr error

	if f.chdir {
		if err := os.Chdir(f.prevDir); err != nil {
			firstErr = fmt.Errorf("failed to restore working directory: %w", err)
			warnings.Warnf("%v", firstErr)
		}
		f.chdir = false
	}

	if f.ownIdx && f.index != nil {
		if err := f.index.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to stop fake index: %w", err)
		}
		f.ownIdx = false
	}

	if err := os.RemoveAll(f.root); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to remove fixture directory: %w", err)
	}

	return firstErr
}
