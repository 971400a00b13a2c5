// Package preflight validates that the tool under test and its runtime are
// available before any command is executed against a project.
package preflight

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/pipdrive/pipdrive/pkg/verbose"
)

// ResolutionHints maps command names to installation instructions.
//
// Keys are command names, values are human-readable installation
// instructions with URLs.
var ResolutionHints = map[string]string{
	"pipenv":     "Install pipenv: brew install pipenv (macOS), pipx install pipenv, or pip install --user pipenv",
	"pip":        "Install Python: https://python.org/downloads/",
	"pip3":       "Install Python: https://python.org/downloads/",
	"python":     "Install Python: https://python.org/downloads/",
	"python3":    "Install Python: https://python.org/downloads/",
	"virtualenv": "Install virtualenv: pip install --user virtualenv",
	"pipx":       "Install pipx: https://pipx.pypa.io/stable/installation/",
}

// ValidationError represents a missing command with resolution hints.
//
// Fields:
//   - Command: The name of the missing command
//   - Hint: Installation instructions for resolving it (empty if no hint available)
type ValidationError struct {
	Command string
	Hint    string
}

// Error returns a formatted error message with resolution instructions.
//
// Returns:
//   - string: Formatted error message including command name and resolution instructions
func (e *ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("command not found: %s\n  Resolution: %s", e.Command, e.Hint)
	}
	return fmt.Sprintf("command not found: %s\n  Resolution: Ensure '%s' is installed and available in your PATH.\n             If using a custom tool, install it or update your config to use an available alternative.", e.Command, e.Command)
}

// ValidateResult holds the result of pre-flight validation.
//
// Fields:
//   - Errors: List of validation errors for missing or unavailable commands
type ValidateResult struct {
	Errors []ValidationError
}

// HasErrors returns true if there are validation errors.
//
// Returns:
//   - bool: true if there are one or more validation errors
func (r *ValidateResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ErrorMessage returns a formatted error message for all validation errors.
//
// Returns:
//   - string: Multi-line message with header and list of errors; empty string if no errors
func (r *ValidateResult) ErrorMessage() string {
	if len(r.Errors) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Pre-flight validation failed:\n")
	for _, err := range r.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// ValidateTools checks that every given command is available.
//
// It performs the following operations:
//   - Deduplicates the command list
//   - Validates that each command exists in the system PATH or as a shell alias
//   - Collects validation errors with resolution hints for missing commands
//
// Parameters:
//   - tools: Command names to validate (e.g., "pipenv", "python3")
//
// Returns:
//   - *ValidateResult: Result containing any validation errors; never nil
func ValidateTools(tools ...string) *ValidateResult {
	verbose.Debugf("Preflight: validating %d command(s)", len(tools))
	result := &ValidateResult{}
	checked := make(map[string]bool)

	for _, tool := range tools {
		if checked[tool] {
			continue
		}
		checked[tool] = true
		if err := validateCommand(tool); err != nil {
			result.Errors = append(result.Errors, *err)
		}
	}

	verbose.Debugf("Preflight: validation complete - %d unique commands checked, %d errors", len(checked), len(result.Errors))
	return result
}

// validateCommand checks if a command exists in PATH or as a shell alias.
//
// It performs the following operations:
//   - Returns nil for empty command names
//   - First attempts exec.LookPath for fast binary lookup in PATH
//   - Falls back to a shell-based check to detect aliases and shell functions
//   - Returns ValidationError with resolution hint if the command is not found
//
// Parameters:
//   - cmd: The command name to validate
//
// Returns:
//   - *ValidationError: Error with resolution hint if not found; nil when the command exists
func validateCommand(cmd string) *ValidationError {
	if cmd == "" {
		return nil
	}

	if _, err := exec.LookPath(cmd); err == nil {
		verbose.Debugf("Preflight: %s found in PATH", cmd)
		return nil
	}

	// PATH lookup missed; the command may still exist as an alias or shell
	// function in the user's login shell.
	shell, args := getShellCommandCheck(cmd)
	if err := exec.Command(shell, args...).Run(); err == nil {
		verbose.Debugf("Preflight: %s found via shell lookup", cmd)
		return nil
	}

	return &ValidationError{Command: cmd, Hint: ResolutionHints[cmd]}
}
