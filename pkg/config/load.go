package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pipdrive/pipdrive/pkg/errors"
	"github.com/pipdrive/pipdrive/pkg/verbose"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from the specified path or defaults.
//
// If configPath is provided, it loads that specific config file.
// Otherwise, it looks for .pipdrive.yml in the working directory.
// If no config is found, it returns the built-in default configuration.
//
// Parameters:
//   - configPath: path to the config file, or empty to use defaults
//   - workDir: working directory for the configuration
//
// Returns:
//   - *Config: the loaded and validated configuration
//   - error: any error encountered during loading or validation
func LoadConfig(configPath, workDir string) (*Config, error) {
	var cfg *Config

	if configPath != "" {
		verbose.Infof("Loading config from: %s", configPath)
		loaded, err := loadConfigFile(configPath)
		if err != nil {
			return nil, errors.NewExitError(errors.ExitConfigError,
				fmt.Errorf("failed to read config file: %w", err))
		}
		cfg = loaded
	} else {
		localConfig := filepath.Join(workDir, DefaultFileName)
		if _, err := os.Stat(localConfig); err == nil {
			verbose.Infof("Found local config: %s", localConfig)
			loaded, err := loadConfigFile(localConfig)
			if err != nil {
				return nil, errors.NewExitError(errors.ExitConfigError,
					fmt.Errorf("failed to read config file: %w", err))
			}
			cfg = loaded
		}
	}

	if cfg == nil {
		verbose.Info("Using built-in default configuration")
		cfg = DefaultConfig()
	}

	cfg.applyDefaults()

	if workDir != "" {
		cfg.WorkingDir = workDir
	} else if cfg.WorkingDir == "" {
		cfg.WorkingDir = "."
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file.
//
// Parameters:
//   - path: path to the config file
//
// Returns:
//   - *Config: the loaded configuration
//   - error: error if the file is missing or has invalid YAML
func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	return &cfg, nil
}

// validateConfig checks the configuration for values that cannot work.
//
// It verifies:
//   - The timeout is not negative
//   - File names are bare names, not paths
//
// Parameters:
//   - cfg: configuration to validate
//
// Returns:
//   - error: validation error with config exit code, or nil
func validateConfig(cfg *Config) error {
	if cfg.TimeoutSeconds < 0 {
		return errors.NewExitErrorf(errors.ExitConfigError,
			"timeout_seconds must not be negative: %d", cfg.TimeoutSeconds)
	}
	for _, name := range []string{cfg.Pipfile, cfg.Lockfile} {
		if name != filepath.Base(name) {
			return errors.NewExitErrorf(errors.ExitConfigError,
				"file name must not contain path separators: %q", name)
		}
	}
	return nil
}
