// Package pipfile parses and renders the Pipfile manifest maintained by the
// dependency manager under test.
//
// The manifest declares named package sources and two requirement tables
// (packages and dev-packages). Parsing keeps the raw, unexpanded source URLs
// so that environment placeholders never leak back to disk; resolution
// against an environment happens only through the lookup methods in this
// package.
package pipfile

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the manifest file name the tool under test maintains.
const DefaultFileName = "Pipfile"

// Source is a named package index declared in the manifest.
//
// Fields:
//   - Name: Unique identifier of the source within the file
//   - URL: Index URL, possibly containing ${VAR} placeholders
//   - VerifySSL: Whether TLS certificates are verified for this index
type Source struct {
	Name      string
	URL       string
	VerifySSL bool
}

// Requirement is a single package entry in a requirement table.
//
// The manifest allows a bare version string (pytz = "*") or an inline table
// with additional attributes; both forms decode into this type.
//
// Fields:
//   - Version: Version constraint, "*" for any
//   - Index: Name of the declared source this package is pinned to
//   - Path: Local path for path-based requirements
//   - Editable: Whether the requirement is installed in editable mode
//   - Extras: Optional extras requested for the package
//   - Markers: PEP 508 environment markers, verbatim
type Requirement struct {
	Version  string   `json:"version,omitempty"`
	Index    string   `json:"index,omitempty"`
	Path     string   `json:"path,omitempty"`
	Editable bool     `json:"editable,omitempty"`
	Extras   []string `json:"extras,omitempty"`
	Markers  string   `json:"markers,omitempty"`
}

// bare reports whether the requirement carries nothing but a version and can
// be rendered as a bare string.
func (r Requirement) bare() bool {
	return r.Index == "" && r.Path == "" && !r.Editable && len(r.Extras) == 0 && r.Markers == ""
}

// Pipfile is the parsed manifest.
//
// Fields:
//   - Packages: Production requirement table keyed by package name
//   - DevPackages: Development requirement table keyed by package name
//   - Requires: Interpreter requirements (e.g. python_version)
//   - Scripts: Named script shortcuts
type Pipfile struct {
	Packages    map[string]Requirement
	DevPackages map[string]Requirement
	Requires    map[string]string
	Scripts     map[string]string

	sources      []Source
	packageOrder []string
	devOrder     []string
}

// rawPipfile mirrors the TOML document shape. Requirement entries stay
// untyped because they may be strings or tables.
type rawPipfile struct {
	Source      []map[string]any `toml:"source"`
	Packages    map[string]any   `toml:"packages"`
	DevPackages map[string]any   `toml:"dev-packages"`
	Requires    map[string]any   `toml:"requires"`
	Scripts     map[string]any   `toml:"scripts"`
}

// Load reads and parses a manifest from disk.
//
// Parameters:
//   - path: Manifest location
//
// Returns:
//   - *Pipfile: Parsed manifest
//   - error: Read or parse failure; os.ReadFile errors pass through so
//     callers can distinguish a missing file from a malformed one
func Load(path string) (*Pipfile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pf, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return pf, nil
}

// Parse parses manifest content.
//
// It performs the following operations:
//   - Decodes the TOML document, tolerating both requirement forms
//   - Preserves the declared order of sources and requirement keys
//   - Normalizes verify_ssl values given as strings ("true"/"false")
//
// Parameters:
//   - content: Raw manifest bytes
//
// Returns:
//   - *Pipfile: Parsed manifest
//   - error: Parse failure, nil on success
func Parse(content []byte) (*Pipfile, error) {
	var raw rawPipfile
	if err := toml.Unmarshal(content, &raw); err != nil {
		return nil, err
	}

	pf := &Pipfile{
		Packages:    make(map[string]Requirement),
		DevPackages: make(map[string]Requirement),
		Requires:    make(map[string]string),
		Scripts:     make(map[string]string),
	}

	for i, entry := range raw.Source {
		src, err := sourceFromTable(entry)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		pf.sources = append(pf.sources, src)
	}

	for name, entry := range raw.Packages {
		req, err := requirementFromValue(entry)
		if err != nil {
			return nil, fmt.Errorf("package %q: %w", name, err)
		}
		pf.Packages[name] = req
	}
	for name, entry := range raw.DevPackages {
		req, err := requirementFromValue(entry)
		if err != nil {
			return nil, fmt.Errorf("dev-package %q: %w", name, err)
		}
		pf.DevPackages[name] = req
	}

	for key, value := range raw.Requires {
		pf.Requires[key] = fmt.Sprintf("%v", value)
	}
	for key, value := range raw.Scripts {
		pf.Scripts[key] = fmt.Sprintf("%v", value)
	}

	pf.packageOrder = sectionKeyOrder(content, "packages", pf.Packages)
	pf.devOrder = sectionKeyOrder(content, "dev-packages", pf.DevPackages)

	return pf, nil
}

// SetPackage adds or replaces a production requirement, keeping declaration
// order stable for rendering.
//
// Parameters:
//   - name: Package name
//   - req: Requirement entry
func (p *Pipfile) SetPackage(name string, req Requirement) {
	if _, exists := p.Packages[name]; !exists {
		p.packageOrder = append(p.packageOrder, name)
	}
	p.Packages[name] = req
}

// SetDevPackage adds or replaces a development requirement.
//
// Parameters:
//   - name: Package name
//   - req: Requirement entry
func (p *Pipfile) SetDevPackage(name string, req Requirement) {
	if _, exists := p.DevPackages[name]; !exists {
		p.devOrder = append(p.devOrder, name)
	}
	p.DevPackages[name] = req
}

// PackageNames returns production package names in declaration order.
//
// Returns:
//   - []string: Ordered package names
func (p *Pipfile) PackageNames() []string {
	return append([]string(nil), p.packageOrder...)
}

// DevPackageNames returns development package names in declaration order.
//
// Returns:
//   - []string: Ordered package names
func (p *Pipfile) DevPackageNames() []string {
	return append([]string(nil), p.devOrder...)
}

// Validate checks internal consistency of the manifest.
//
// Every index reference in a requirement must name a declared source; a
// manifest violating that cannot be resolved by the tool under test.
//
// Returns:
//   - error: Describing each dangling index reference, nil when consistent
func (p *Pipfile) Validate() error {
	declared := make(map[string]struct{}, len(p.sources))
	for _, src := range p.sources {
		declared[src.Name] = struct{}{}
	}

	var dangling []string
	check := func(table string, names []string, reqs map[string]Requirement) {
		for _, name := range names {
			req := reqs[name]
			if req.Index == "" {
				continue
			}
			if _, ok := declared[req.Index]; !ok {
				dangling = append(dangling, fmt.Sprintf("%s.%s -> %s", table, name, req.Index))
			}
		}
	}
	check("packages", p.packageOrder, p.Packages)
	check("dev-packages", p.devOrder, p.DevPackages)

	if len(dangling) > 0 {
		return fmt.Errorf("index references without a declared source: %s", strings.Join(dangling, ", "))
	}
	return nil
}

// sourceFromTable converts a decoded [[source]] table into a Source.
func sourceFromTable(entry map[string]any) (Source, error) {
	src := Source{}
	if name, ok := entry["name"].(string); ok {
		src.Name = name
	}
	if url, ok := entry["url"].(string); ok {
		src.URL = url
	}
	if src.Name == "" {
		return src, fmt.Errorf("missing name")
	}
	if src.URL == "" {
		return src, fmt.Errorf("missing url")
	}

	verify, err := boolValue(entry["verify_ssl"], true)
	if err != nil {
		return src, fmt.Errorf("verify_ssl: %w", err)
	}
	src.VerifySSL = verify
	return src, nil
}

// requirementFromValue converts a decoded requirement entry, accepting both
// the bare-string and inline-table forms.
func requirementFromValue(entry any) (Requirement, error) {
	switch v := entry.(type) {
	case string:
		return Requirement{Version: v}, nil
	case map[string]any:
		req := Requirement{}
		if version, ok := v["version"].(string); ok {
			req.Version = version
		}
		if index, ok := v["index"].(string); ok {
			req.Index = index
		}
		if path, ok := v["path"].(string); ok {
			req.Path = path
		}
		if markers, ok := v["markers"].(string); ok {
			req.Markers = markers
		}
		editable, err := boolValue(v["editable"], false)
		if err != nil {
			return req, fmt.Errorf("editable: %w", err)
		}
		req.Editable = editable
		if extras, ok := v["extras"].([]any); ok {
			for _, extra := range extras {
				if s, ok := extra.(string); ok {
					req.Extras = append(req.Extras, s)
				}
			}
		}
		return req, nil
	default:
		return Requirement{}, fmt.Errorf("unsupported entry type %T", entry)
	}
}

// boolValue normalizes a TOML boolean that real-world manifests sometimes
// spell as the strings "true" or "false".
func boolValue(value any, fallback bool) (bool, error) {
	switch v := value.(type) {
	case nil:
		return fallback, nil
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return fallback, fmt.Errorf("invalid boolean %q", v)
	default:
		return fallback, fmt.Errorf("unsupported boolean type %T", value)
	}
}

// sectionKeyOrder recovers the declaration order of keys in a requirement
// section by scanning the raw document.
//
// TOML maps lose ordering during decode, but the renderer should keep the
// author's ordering for in-place rewrites. Keys the scan misses (or entries
// declared as [section.name] outline tables) are appended in map order.
func sectionKeyOrder(content []byte, section string, entries map[string]Requirement) []string {
	var order []string
	seen := make(map[string]struct{})

	current := ""
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			header := strings.Trim(trimmed, "[]")
			if name, found := strings.CutPrefix(header, section+"."); found {
				// Outline table form: the header itself declares the key.
				name = strings.Trim(name, `"'`)
				if _, ok := entries[name]; ok {
					if _, dup := seen[name]; !dup {
						order = append(order, name)
						seen[name] = struct{}{}
					}
				}
				current = ""
				continue
			}
			current = header
			continue
		}

		if current != section {
			continue
		}
		key, _, found := strings.Cut(trimmed, "=")
		if !found {
			continue
		}
		name := strings.Trim(strings.TrimSpace(key), `"'`)
		if _, ok := entries[name]; !ok {
			continue
		}
		if _, dup := seen[name]; !dup {
			order = append(order, name)
			seen[name] = struct{}{}
		}
	}

	// Safety net for anything the scan missed, in stable order.
	var missed []string
	for name := range entries {
		if _, ok := seen[name]; !ok {
			missed = append(missed, name)
		}
	}
	sort.Strings(missed)
	return append(order, missed...)
}
