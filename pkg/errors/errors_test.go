package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestExitCodes tests the exit code constants.
//
// It verifies:
//   - Exit codes match the documented scripting contract
func TestExitCodes(t *testing.T) {
	assert.Equal(t, 0, ExitSuccess)
	assert.Equal(t, 2, ExitFailure)
	assert.Equal(t, 3, ExitConfigError)
}

// TestExitError tests the behavior of ExitError.
//
// It verifies:
//   - Message takes precedence over the wrapped error
//   - Wrapped error message is used when Message is empty
//   - Default message includes the exit code
//   - Unwrap exposes the underlying error
func TestExitError(t *testing.T) {
	t.Run("message takes precedence", func(t *testing.T) {
		err := &ExitError{Code: ExitFailure, Message: "check failed", Err: stderrors.New("inner")}
		assert.Equal(t, "check failed", err.Error())
	})

	t.Run("falls back to wrapped error", func(t *testing.T) {
		inner := stderrors.New("inner failure")
		err := &ExitError{Code: ExitFailure, Err: inner}
		assert.Equal(t, "inner failure", err.Error())
		assert.Equal(t, inner, err.Unwrap())
	})

	t.Run("default message includes code", func(t *testing.T) {
		err := &ExitError{Code: ExitConfigError}
		assert.Equal(t, "exit code 3", err.Error())
		assert.Nil(t, err.Unwrap())
	})
}

// TestNewExitError tests the behavior of NewExitError and NewExitErrorf.
//
// It verifies:
//   - Code and wrapped error are stored
//   - Formatted messages are rendered
func TestNewExitError(t *testing.T) {
	inner := stderrors.New("boom")
	err := NewExitError(ExitConfigError, inner)
	assert.Equal(t, ExitConfigError, err.Code)
	assert.True(t, stderrors.Is(err, inner))

	errf := NewExitErrorf(ExitFailure, "failed to parse %s", "Pipfile")
	assert.Equal(t, ExitFailure, errf.Code)
	assert.Equal(t, "failed to parse Pipfile", errf.Error())
}

// TestGetExitCode tests the behavior of GetExitCode.
//
// It verifies:
//   - nil errors map to ExitSuccess
//   - ExitError codes pass through, including when wrapped
//   - Plain errors map to ExitFailure
func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitConfigError, GetExitCode(NewExitError(ExitConfigError, nil)))
	assert.Equal(t, ExitFailure, GetExitCode(stderrors.New("plain")))

	wrapped := fmt.Errorf("context: %w", NewExitError(ExitConfigError, nil))
	assert.Equal(t, ExitConfigError, GetExitCode(wrapped))
}

// TestIsExitError tests the behavior of IsExitError.
//
// It verifies:
//   - ExitError values are detected directly and through wrapping
//   - Plain errors are not detected
func TestIsExitError(t *testing.T) {
	exitErr := NewExitError(ExitFailure, nil)

	got, ok := IsExitError(exitErr)
	assert.True(t, ok)
	assert.Equal(t, exitErr, got)

	got, ok = IsExitError(fmt.Errorf("wrap: %w", exitErr))
	assert.True(t, ok)
	assert.Equal(t, exitErr, got)

	got, ok = IsExitError(stderrors.New("plain"))
	assert.False(t, ok)
	assert.Nil(t, got)
}
