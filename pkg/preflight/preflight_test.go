package preflight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTools(t *testing.T) {
	t.Run("available command", func(t *testing.T) {
		result := ValidateTools("sh")
		assert.False(t, result.HasErrors())
		assert.Empty(t, result.ErrorMessage())
	})

	t.Run("missing command", func(t *testing.T) {
		result := ValidateTools("definitely-not-installed-tool-xyz")
		require.True(t, result.HasErrors())
		assert.Len(t, result.Errors, 1)
		assert.Equal(t, "definitely-not-installed-tool-xyz", result.Errors[0].Command)
	})

	t.Run("deduplicates", func(t *testing.T) {
		result := ValidateTools("nope-xyz", "nope-xyz", "nope-xyz")
		assert.Len(t, result.Errors, 1)
	})

	t.Run("empty names are skipped", func(t *testing.T) {
		result := ValidateTools("")
		assert.False(t, result.HasErrors())
	})

	t.Run("no tools", func(t *testing.T) {
		result := ValidateTools()
		assert.False(t, result.HasErrors())
	})
}

func TestValidationErrorMessage(t *testing.T) {
	t.Run("with hint", func(t *testing.T) {
		err := &ValidationError{Command: "pipenv", Hint: ResolutionHints["pipenv"]}
		assert.Contains(t, err.Error(), "command not found: pipenv")
		assert.Contains(t, err.Error(), "pipx install pipenv")
	})

	t.Run("without hint", func(t *testing.T) {
		err := &ValidationError{Command: "mystery-tool"}
		assert.Contains(t, err.Error(), "command not found: mystery-tool")
		assert.Contains(t, err.Error(), "PATH")
	})
}

func TestErrorMessageFormat(t *testing.T) {
	result := &ValidateResult{Errors: []ValidationError{
		{Command: "alpha"},
		{Command: "beta"},
	}}

	msg := result.ErrorMessage()
	assert.True(t, strings.HasPrefix(msg, "Pre-flight validation failed:"))
	assert.Contains(t, msg, "alpha")
	assert.Contains(t, msg, "beta")
}

func TestGetShellCommandCheck(t *testing.T) {
	t.Run("uses SHELL when set", func(t *testing.T) {
		t.Setenv("SHELL", "/bin/zsh")
		shell, args := getShellCommandCheck("pipenv")
		assert.Equal(t, "/bin/zsh", shell)
		assert.Equal(t, []string{"-l", "-c", "command -v pipenv"}, args)
	})

	t.Run("falls back to sh", func(t *testing.T) {
		t.Setenv("SHELL", "")
		shell, _ := getShellCommandCheck("pipenv")
		assert.Equal(t, "sh", shell)
	})
}
