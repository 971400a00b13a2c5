package pipfile

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ErrSourceNotFound is returned by source lookups with no match.
var ErrSourceNotFound = errors.New("source not found")

// placeholderPattern matches ${VAR} placeholders inside source URLs.
var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Sources returns the declared sources in order, with ${VAR} placeholders in
// each URL resolved against the given environment.
//
// Resolution happens at call time, not at parse time: the manifest keeps its
// raw URLs, so resolved values never appear in the on-disk representation.
// Resolution is idempotent; a URL without placeholders passes through
// untouched, and placeholders naming unset variables stay literal.
//
// Parameters:
//   - env: Environment for resolution; nil means the current process environment
//
// Returns:
//   - []Source: Resolved sources in declaration order
func (p *Pipfile) Sources(env map[string]string) []Source {
	lookup := envLookup(env)
	sources := make([]Source, len(p.sources))
	for i, src := range p.sources {
		src.URL = ExpandURL(src.URL, lookup)
		sources[i] = src
	}
	return sources
}

// RawSources returns the declared sources without placeholder resolution.
//
// Returns:
//   - []Source: Sources exactly as written in the manifest
func (p *Pipfile) RawSources() []Source {
	return append([]Source(nil), p.sources...)
}

// GetSourceByName looks up a source by its declared name.
//
// Parameters:
//   - name: Source name to match exactly
//   - env: Environment for URL resolution; nil means the process environment
//
// Returns:
//   - Source: The matching source with its URL resolved
//   - error: ErrSourceNotFound (wrapped) when no source has that name
func (p *Pipfile) GetSourceByName(name string, env map[string]string) (Source, error) {
	for _, src := range p.Sources(env) {
		if src.Name == name {
			return src, nil
		}
	}
	return Source{}, fmt.Errorf("no source named %q: %w", name, ErrSourceNotFound)
}

// GetSourceByURL looks up a source by its resolved URL.
//
// When two sources share a URL, the first declaration wins; FindSource uses
// the same rule so the two lookups always agree.
//
// Parameters:
//   - url: Resolved URL to match exactly
//   - env: Environment for URL resolution; nil means the process environment
//
// Returns:
//   - Source: The first matching source
//   - error: ErrSourceNotFound (wrapped) when no source has that URL
func (p *Pipfile) GetSourceByURL(url string, env map[string]string) (Source, error) {
	for _, src := range p.Sources(env) {
		if src.URL == url {
			return src, nil
		}
	}
	return Source{}, fmt.Errorf("no source with url %q: %w", url, ErrSourceNotFound)
}

// FindSource looks up a source by name or URL transparently.
//
// Name equality is probed first, then URL equality, each in declaration
// order.
//
// Parameters:
//   - nameOrURL: Source name or resolved URL
//   - env: Environment for URL resolution; nil means the process environment
//
// Returns:
//   - Source: The matching source
//   - error: ErrSourceNotFound (wrapped) when neither lookup matches
func (p *Pipfile) FindSource(nameOrURL string, env map[string]string) (Source, error) {
	if src, err := p.GetSourceByName(nameOrURL, env); err == nil {
		return src, nil
	}
	if src, err := p.GetSourceByURL(nameOrURL, env); err == nil {
		return src, nil
	}
	return Source{}, fmt.Errorf("no source matching %q: %w", nameOrURL, ErrSourceNotFound)
}

// ExpandURL resolves ${VAR} placeholders in a URL using the lookup function.
//
// Placeholders whose variable the lookup cannot resolve are left literal, so
// an unresolved URL round-trips unchanged.
//
// Parameters:
//   - url: URL possibly containing placeholders
//   - lookup: Variable lookup; nil leaves every placeholder literal
//
// Returns:
//   - string: URL with resolvable placeholders substituted
func ExpandURL(url string, lookup func(string) (string, bool)) string {
	if lookup == nil || !strings.Contains(url, "${") {
		return url
	}
	return placeholderPattern.ReplaceAllStringFunc(url, func(match string) string {
		key := match[2 : len(match)-1]
		if value, ok := lookup(key); ok {
			return value
		}
		return match
	})
}

// envLookup builds a variable lookup from an explicit map, falling back to
// the process environment when the map is nil.
func envLookup(env map[string]string) func(string) (string, bool) {
	if env == nil {
		return os.LookupEnv
	}
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}
