package verbose

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEnableDisable tests the behavior of Enable and Disable functions.
//
// It verifies:
//   - Disable sets enabled state to false
//   - Enable sets enabled state to true
//   - IsEnabled returns correct state
func TestEnableDisable(t *testing.T) {
	// Reset state
	Disable()
	assert.False(t, IsEnabled())

	Enable()
	assert.True(t, IsEnabled())

	Disable()
	assert.False(t, IsEnabled())
}

// TestSetWriter tests the behavior of SetWriter.
//
// It verifies:
//   - Writer can be set and messages are written to it
//   - nil writer parameter is ignored
func TestSetWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	SetWriter(buf)

	Enable()
	Printf("test message")
	Disable()

	assert.Contains(t, buf.String(), "test message")

	// Test nil writer is ignored
	SetWriter(nil)
	buf.Reset()
	Enable()
	Printf("another message")
	Disable()
	assert.Contains(t, buf.String(), "another message")
}

// TestPrintf tests the behavior of Printf.
//
// It verifies:
//   - No output when verbose is disabled
//   - Formatted output appears when verbose is enabled
//   - Format string and arguments are properly interpolated
func TestPrintf(t *testing.T) {
	buf := &bytes.Buffer{}
	SetWriter(buf)

	// When disabled, no output
	Disable()
	Printf("should not appear")
	assert.Empty(t, buf.String())

	// When enabled, output appears
	Enable()
	Printf("test %s %d", "arg", 42)
	Disable()

	assert.Contains(t, buf.String(), "test arg 42")
}

// TestInfo tests the behavior of Info and Infof.
//
// It verifies:
//   - No output when verbose is disabled
//   - Messages appear with a trailing newline when enabled
func TestInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	SetWriter(buf)

	// When disabled, no output
	Disable()
	Info("should not appear")
	Infof("should not %s", "appear")
	assert.Empty(t, buf.String())

	// When enabled, output appears
	Enable()
	Info("info message")
	Infof("info %s %d", "formatted", 123)
	Disable()

	assert.Contains(t, buf.String(), "info message\n")
	assert.Contains(t, buf.String(), "info formatted 123\n")
}

// TestDebugf tests the behavior of Debugf.
//
// It verifies:
//   - No output when verbose is disabled
//   - Messages carry the DEBUG: prefix when enabled
func TestDebugf(t *testing.T) {
	buf := &bytes.Buffer{}
	SetWriter(buf)

	Disable()
	Debugf("debug message %d", 42)
	assert.Empty(t, buf.String())

	Enable()
	Debugf("debug message %d", 42)
	Disable()

	assert.Contains(t, buf.String(), "DEBUG: debug message 42")
}

// TestCommandExec tests the behavior of CommandExec.
//
// It verifies:
//   - No output when verbose is disabled
//   - Tool, arguments, and working directory appear when enabled
func TestCommandExec(t *testing.T) {
	buf := &bytes.Buffer{}
	SetWriter(buf)

	// When disabled, no output
	Disable()
	CommandExec("pipenv", []string{"install", "pytz"}, "/path/to/project")
	assert.Empty(t, buf.String())

	// When enabled, output appears
	Enable()
	CommandExec("pipenv", []string{"install", "pytz"}, "/path/to/project")
	output := buf.String()
	Disable()

	assert.Contains(t, output, "EXEC: pipenv install pytz")
	assert.Contains(t, output, "dir=/path/to/project")
}

// TestCommandResult tests the behavior of CommandResult.
//
// It verifies:
//   - No output when verbose is disabled
//   - Exit code and both output streams appear when enabled
//   - Empty streams are omitted
//   - Long output is truncated
func TestCommandResult(t *testing.T) {
	buf := &bytes.Buffer{}
	SetWriter(buf)

	// When disabled, no output
	Disable()
	CommandResult("pipenv", 1, "out", "err")
	assert.Empty(t, buf.String())

	// When enabled, output appears
	Enable()
	CommandResult("pipenv", 1, "stdout text", "stderr text")
	output := buf.String()
	Disable()

	assert.Contains(t, output, "RESULT: pipenv exit=1")
	assert.Contains(t, output, "stdout: stdout text")
	assert.Contains(t, output, "stderr: stderr text")

	// Empty streams are omitted
	buf.Reset()
	Enable()
	CommandResult("pipenv", 0, "", "")
	output = buf.String()
	Disable()

	assert.Contains(t, output, "RESULT: pipenv exit=0")
	assert.NotContains(t, output, "stdout:")
	assert.NotContains(t, output, "stderr:")

	// Long output is truncated
	buf.Reset()
	Enable()
	CommandResult("pipenv", 1, strings.Repeat("x", 1000), "")
	output = buf.String()
	Disable()

	assert.Contains(t, output, "(truncated)")
}

// TestTruncate tests the behavior of truncate.
//
// It verifies:
//   - Strings within the limit pass through unchanged
//   - Strings over the limit are cut and marked
func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exact", truncate("exact", 5))
	assert.Equal(t, "abcde... (truncated)", truncate("abcdefgh", 5))
}
