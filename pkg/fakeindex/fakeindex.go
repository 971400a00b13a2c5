// Package fakeindex serves a minimal PEP 503 "simple" package index from a
// local directory of sdist and wheel files.
//
// Fixtures wire the server's URL into the tool under test through the
// test-index environment variable, keeping integration tests off the real
// network. Only the endpoints pip's simple-index protocol needs are
// implemented: the package list, per-package link pages, and file downloads.
package fakeindex

import (
	"fmt"
	"html"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/pipdrive/pipdrive/pkg/venv"
	"github.com/pipdrive/pipdrive/pkg/verbose"
)

// Server is a fake package index bound to a local directory.
//
// The zero value is not usable; construct with New and call Start before
// reading URL.
type Server struct {
	dir string

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	url      string
}

// New creates a server that publishes the archives found in dir.
//
// Parameters:
//   - dir: Directory containing .tar.gz, .zip, and .whl files
//
// Returns:
//   - *Server: Unstarted server
func New(dir string) *Server {
	return &Server{dir: dir}
}

// Start binds the server to an ephemeral localhost port and begins serving.
//
// Parameters: none
//
// Returns:
//   - error: Bind failure, nil on success
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return fmt.Errorf("fake index already started")
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to bind fake index: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/simple/", s.handleSimple)
	mux.HandleFunc("/packages/", s.handlePackage)

	s.listener = listener
	s.server = &http.Server{Handler: mux}
	s.url = fmt.Sprintf("http://%s/simple", listener.Addr())

	srv := s.server
	go func() {
		_ = srv.Serve(listener)
	}()

	verbose.Infof("fake index serving %s at %s", s.dir, s.url)
	return nil
}

// URL returns the index base URL suitable for the test-index variable.
//
// Returns:
//   - string: http://127.0.0.1:<port>/simple, empty before Start
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Close stops the server and releases its port.
//
// Close is safe to call on a server that never started.
//
// Returns:
//   - error: Shutdown failure, nil on success
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	err := s.server.Close()
	s.server = nil
	s.listener = nil
	s.url = ""
	return err
}

// handleSimple serves the package list and per-package link pages.
func (s *Server) handleSimple(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/simple/"), "/")

	files, err := s.archives()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if rest == "" {
		names := make(map[string]struct{})
		for _, file := range files {
			names[NameFromFilename(file)] = struct{}{}
		}
		sorted := make([]string, 0, len(names))
		for name := range names {
			sorted = append(sorted, name)
		}
		sort.Strings(sorted)

		fmt.Fprint(w, "<!DOCTYPE html><html><body>\n")
		for _, name := range sorted {
			fmt.Fprintf(w, "<a href=\"/simple/%s/\">%s</a><br/>\n", html.EscapeString(name), html.EscapeString(name))
		}
		fmt.Fprint(w, "</body></html>\n")
		return
	}

	wanted := venv.Normalize(rest)
	var links []string
	for _, file := range files {
		if NameFromFilename(file) == wanted {
			links = append(links, file)
		}
	}
	if len(links) == 0 {
		http.NotFound(w, r)
		return
	}

	fmt.Fprint(w, "<!DOCTYPE html><html><body>\n")
	for _, file := range links {
		fmt.Fprintf(w, "<a href=\"/packages/%s\">%s</a><br/>\n", html.EscapeString(file), html.EscapeString(file))
	}
	fmt.Fprint(w, "</body></html>\n")
}

// handlePackage serves an archive download.
func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/packages/")
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.dir, name))
}

// archives lists the archive file names published by the server.
func (s *Server) archives() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read package directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if isArchive(name) {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	return files, nil
}

// isArchive reports whether a file name looks like a distributable archive.
func isArchive(name string) bool {
	return strings.HasSuffix(name, ".tar.gz") ||
		strings.HasSuffix(name, ".zip") ||
		strings.HasSuffix(name, ".whl")
}

// NameFromFilename extracts the normalized package name from an archive file
// name.
//
// The name is everything before the first dash-separated segment that starts
// with a digit, which is where the version begins in both sdist and wheel
// naming conventions.
//
// Parameters:
//   - filename: Archive file name, e.g. "requests-2.19.1.tar.gz"
//
// Returns:
//   - string: Normalized package name, e.g. "requests"
func NameFromFilename(filename string) string {
	base := filename
	for _, suffix := range []string{".tar.gz", ".zip", ".whl"} {
		base = strings.TrimSuffix(base, suffix)
	}

	segments := strings.Split(base, "-")
	var nameParts []string
	for _, segment := range segments {
		if segment != "" && unicode.IsDigit(rune(segment[0])) {
			break
		}
		nameParts = append(nameParts, segment)
	}
	if len(nameParts) == 0 {
		return venv.Normalize(base)
	}
	return venv.Normalize(strings.Join(nameParts, "-"))
}
