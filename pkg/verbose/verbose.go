// Package verbose provides debug logging for pipdrive.
package verbose

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	mu      sync.RWMutex
	enabled bool
	writer  io.Writer = os.Stderr
)

// Enable turns on verbose logging and allows debug messages to be printed.
func Enable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
}

// Disable turns off verbose logging and prevents debug messages from being printed.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = false
}

// IsEnabled returns whether verbose logging is currently enabled.
//
// Returns:
//   - bool: true if verbose logging is enabled, false otherwise
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetWriter sets the output writer for verbose messages.
//
// Parameters:
//   - w: The io.Writer to use for output; if nil, the writer remains unchanged
func SetWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w != nil {
		writer = w
	}
}

// getWriter returns the current output writer under a read lock.
func getWriter() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return writer
}

// Printf writes a formatted message to the verbose writer when logging is enabled.
//
// Parameters:
//   - format: Printf-style format string
//   - args: Variadic arguments to format into the string
func Printf(format string, args ...any) {
	if !IsEnabled() {
		return
	}
	_, _ = fmt.Fprintf(getWriter(), format, args...)
}

// Info writes an informational message with a trailing newline when logging is enabled.
//
// Parameters:
//   - msg: Message text to print
func Info(msg string) {
	if !IsEnabled() {
		return
	}
	_, _ = fmt.Fprintln(getWriter(), msg)
}

// Infof writes a formatted informational message with a trailing newline when
// logging is enabled.
//
// Parameters:
//   - format: Printf-style format string
//   - args: Variadic arguments to format into the string
func Infof(format string, args ...any) {
	if !IsEnabled() {
		return
	}
	_, _ = fmt.Fprintf(getWriter(), format+"\n", args...)
}

// Debugf writes a formatted debug message prefixed with "DEBUG:" when logging
// is enabled.
//
// Parameters:
//   - format: Printf-style format string
//   - args: Variadic arguments to format into the string
func Debugf(format string, args ...any) {
	if !IsEnabled() {
		return
	}
	_, _ = fmt.Fprintf(getWriter(), "DEBUG: "+format+"\n", args...)
}

// CommandExec logs a command about to be executed, including its working directory.
//
// Parameters:
//   - tool: The executable being invoked
//   - args: Arguments passed to the executable
//   - dir: Working directory of the invocation
func CommandExec(tool string, args []string, dir string) {
	if !IsEnabled() {
		return
	}
	_, _ = fmt.Fprintf(getWriter(), "EXEC: %s %s (dir=%s)\n", tool, strings.Join(args, " "), dir)
}

// CommandResult logs the outcome of a command execution.
//
// Output is truncated to keep verbose logs readable when the tool under test
// prints large amounts of text.
//
// Parameters:
//   - tool: The executable that was invoked
//   - exitCode: The process exit code
//   - stdout: Captured standard output
//   - stderr: Captured standard error
func CommandResult(tool string, exitCode int, stdout, stderr string) {
	if !IsEnabled() {
		return
	}
	w := getWriter()
	_, _ = fmt.Fprintf(w, "RESULT: %s exit=%d\n", tool, exitCode)
	if out := truncate(strings.TrimSpace(stdout), 400); out != "" {
		_, _ = fmt.Fprintf(w, "  stdout: %s\n", out)
	}
	if errOut := truncate(strings.TrimSpace(stderr), 400); errOut != "" {
		_, _ = fmt.Fprintf(w, "  stderr: %s\n", errOut)
	}
}

// truncate shortens a string to at most maxLen bytes.
//
// It performs the following operations:
//   - Returns the original string if it's within the maxLen limit
//   - Truncates the string to maxLen and appends a truncation marker otherwise
//
// Parameters:
//   - s: The string to truncate
//   - maxLen: The maximum length before truncation applies
//
// Returns:
//   - string: The original or truncated string
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "... (truncated)"
}
