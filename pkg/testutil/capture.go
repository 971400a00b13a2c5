// Package testutil provides shared test utilities for pipdrive packages.
package testutil

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// captureStream swaps the file behind target for a pipe while fn runs and
// returns everything written through it. The stream is read only after fn
// finishes, so fn must not produce more output than the pipe buffers.
func captureStream(t *testing.T, target **os.File, fn func()) string {
	t.Helper()

	orig := *target
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create capture pipe: %v", err)
	}
	*target = w

	fn()

	_ = w.Close()
	*target = orig

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	_ = r.Close()

	return buf.String()
}

// CaptureStdout runs fn with os.Stdout redirected and returns what fn
// printed. Stdout is restored before returning.
//
// Parameters:
//   - t: Testing instance for helper marking
//   - fn: Function whose stdout should be captured
//
// Returns:
//   - string: Everything written to stdout while fn ran
func CaptureStdout(t *testing.T, fn func()) string {
	t.Helper()
	return captureStream(t, &os.Stdout, fn)
}

// CaptureStderr runs fn with os.Stderr redirected and returns what fn
// printed. Stderr is restored before returning.
//
// Parameters:
//   - t: Testing instance for helper marking
//   - fn: Function whose stderr should be captured
//
// Returns:
//   - string: Everything written to stderr while fn ran
func CaptureStderr(t *testing.T, fn func()) string {
	t.Helper()
	return captureStream(t, &os.Stderr, fn)
}

// CaptureOutput runs fn with both standard streams redirected and returns
// their contents separately. Both streams are restored before returning.
//
// Parameters:
//   - t: Testing instance for helper marking
//   - fn: Function whose output should be captured
//
// Returns:
//   - stdout: Everything written to stdout while fn ran
//   - stderr: Everything written to stderr while fn ran
func CaptureOutput(t *testing.T, fn func()) (stdout, stderr string) {
	t.Helper()

	stderr = captureStream(t, &os.Stderr, func() {
		stdout = captureStream(t, &os.Stdout, fn)
	})
	return stdout, stderr
}
