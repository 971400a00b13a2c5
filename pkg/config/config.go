// Package config handles configuration loading and validation for pipdrive.
// It supports a YAML-based configuration file describing the tool under
// test, file names, timeouts, and the environment variables used to wire
// fixtures to that tool.
package config

import "time"

// DefaultFileName is the config file probed in the working directory.
const DefaultFileName = ".pipdrive.yml"

// Config is the root configuration structure.
type Config struct {
	// Tool is the executable name or path of the dependency manager under
	// test.
	Tool string `yaml:"tool,omitempty"`

	// TimeoutSeconds bounds each tool invocation. The tool under test may
	// block on network access, so there is always a bound; zero or absent
	// selects the built-in default.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`

	// Pipfile is the manifest file name within a project directory.
	Pipfile string `yaml:"pipfile,omitempty"`

	// Lockfile is the lock file name within a project directory.
	Lockfile string `yaml:"lockfile,omitempty"`

	// Env names the environment variables used to communicate with the
	// tool under test.
	Env EnvCfg `yaml:"env,omitempty"`

	// WorkingDir is a runtime value set by the loader; it is not persisted
	// to YAML.
	WorkingDir string `yaml:"-"`
}

// EnvCfg names the environment variables consumed by the tool under test.
type EnvCfg struct {
	// TestIndex carries the base URL of the package index the tool should
	// resolve against instead of the real network.
	TestIndex string `yaml:"test_index,omitempty"`

	// IgnoreVenv, when set in the environment, stops the tool from
	// adopting an already-activated virtual environment. Its absence
	// allows auto-detection.
	IgnoreVenv string `yaml:"ignore_venv,omitempty"`

	// VenvInProject, when set in the environment, makes the tool create
	// its virtual environment inside the project directory instead of
	// under a shared environments directory.
	VenvInProject string `yaml:"venv_in_project,omitempty"`
}

// Timeout returns the per-invocation timeout as a duration.
//
// Returns:
//   - time.Duration: Per-invocation timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DefaultConfig returns the built-in configuration targeting pipenv.
//
// Returns:
//   - *Config: Defaults for every field
func DefaultConfig() *Config {
	return &Config{
		Tool:           "pipenv",
		TimeoutSeconds: 900,
		Pipfile:        "Pipfile",
		Lockfile:       "Pipfile.lock",
		Env: EnvCfg{
			TestIndex:     "PIPENV_TEST_INDEX",
			IgnoreVenv:    "PIPENV_IGNORE_VIRTUALENVS",
			VenvInProject: "PIPENV_VENV_IN_PROJECT",
		},
	}
}

// applyDefaults fills unset fields from the built-in defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Tool == "" {
		c.Tool = defaults.Tool
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if c.Pipfile == "" {
		c.Pipfile = defaults.Pipfile
	}
	if c.Lockfile == "" {
		c.Lockfile = defaults.Lockfile
	}
	if c.Env.TestIndex == "" {
		c.Env.TestIndex = defaults.Env.TestIndex
	}
	if c.Env.IgnoreVenv == "" {
		c.Env.IgnoreVenv = defaults.Env.IgnoreVenv
	}
	if c.Env.VenvInProject == "" {
		c.Env.VenvInProject = defaults.Env.VenvInProject
	}
}
