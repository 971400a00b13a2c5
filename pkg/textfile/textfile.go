// Package textfile handles line-ending detection and preservation for the
// Pipfile and lock file.
//
// The dependency manager under test writes both files with line-feed-only
// endings regardless of host platform, but an in-place rewrite must keep
// whatever convention was already on disk. These helpers make both rules
// observable and enforceable.
package textfile

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
)

// Newline conventions recognized by DetectNewline.
const (
	// LF is the line-feed-only convention ("\n").
	LF = "\n"

	// CRLF is the carriage-return line-feed convention ("\r\n").
	CRLF = "\r\n"
)

// DetectNewline reports the line-ending convention used by the content.
//
// The first line ending encountered decides the convention for mixed
// content. Content without any line ending reports the empty string.
//
// Parameters:
//   - content: File content to inspect
//
// Returns:
//   - string: LF, CRLF, or "" when no line ending is present
func DetectNewline(content []byte) string {
	idx := bytes.IndexByte(content, '\n')
	if idx < 0 {
		return ""
	}
	if idx > 0 && content[idx-1] == '\r' {
		return CRLF
	}
	return LF
}

// NormalizeTo rewrites every line ending in content to the given convention.
//
// It performs the following operations:
//   - Collapses CRLF sequences to LF so no ending is converted twice
//   - Expands LF to the requested convention
//
// Parameters:
//   - content: File content to convert
//   - newline: Target convention (LF or CRLF)
//
// Returns:
//   - []byte: Converted content; the input slice is not modified
func NormalizeTo(content []byte, newline string) []byte {
	normalized := bytes.ReplaceAll(content, []byte(CRLF), []byte(LF))
	if newline == LF || newline == "" {
		return normalized
	}
	return bytes.ReplaceAll(normalized, []byte(LF), []byte(newline))
}

// ReadWithNewline reads a file and reports its line-ending convention.
//
// Parameters:
//   - path: File to read
//
// Returns:
//   - []byte: File content
//   - string: Detected convention (LF, CRLF, or "")
//   - error: Read failure, nil on success
func ReadWithNewline(path string) ([]byte, string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return content, DetectNewline(content), nil
}

// WriteFilePreserving writes content to a file, keeping the line-ending
// convention already present on disk.
//
// When the file exists, the new content is converted to the convention the
// existing bytes use. When it does not exist, content is written with
// line-feed-only endings, matching how the tool under test generates fresh
// files on every platform.
//
// Parameters:
//   - path: Destination file
//   - content: New content, in any line-ending convention
//   - perm: Permission bits used when the file is created
//
// Returns:
//   - error: Read or write failure, nil on success
func WriteFilePreserving(path string, content []byte, perm os.FileMode) error {
	newline := LF
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if detected := DetectNewline(existing); detected != "" {
			newline = detected
		}
	case errors.Is(err, fs.ErrNotExist):
		// Fresh file: line-feed only.
	default:
		return err
	}

	return os.WriteFile(path, NormalizeTo(content, newline), perm)
}
