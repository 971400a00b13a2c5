// Package lockfile reads and rewrites the machine-generated lock file
// (Pipfile.lock) produced by the dependency manager under test.
//
// The lock file is JSON whose key order carries meaning to human reviewers,
// so reads and in-place rewrites go through an ordered map rather than plain
// Go maps. The package never generates a lock file from scratch; that is the
// tool under test's job.
package lockfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/iancoleman/orderedmap"

	"github.com/pipdrive/pipdrive/pkg/pipfile"
	"github.com/pipdrive/pipdrive/pkg/textfile"
)

// DefaultFileName is the lock file name the tool under test maintains.
const DefaultFileName = "Pipfile.lock"

// Package is a resolved, fully pinned package entry.
//
// Fields:
//   - Version: Pinned version constraint (e.g. "==2018.5")
//   - Hashes: Artifact hashes recorded for the pin
//   - Index: Declared source name the package resolves against
//   - Path: Local path for path-based requirements
//   - Editable: Whether the entry is an editable install
type Package struct {
	Version  string
	Hashes   []string
	Index    string
	Path     string
	Editable bool
}

// Meta is the lock file's _meta section.
//
// Fields:
//   - Hash: sha256 content hash of the manifest the lock was generated from
//   - PipfileSpec: Lock format revision
//   - Sources: Declared sources copied from the manifest at lock time
//   - Requires: Interpreter requirements copied from the manifest
type Meta struct {
	Hash        string
	PipfileSpec int
	Sources     []pipfile.Source
	Requires    map[string]string
}

// Lockfile is a parsed lock file.
//
// The underlying document keeps its original key order so a rewrite after a
// targeted mutation produces a minimal diff.
type Lockfile struct {
	doc *orderedmap.OrderedMap
}

// Load reads and parses a lock file from disk.
//
// A lock file only exists after a successful resolution step; callers can
// distinguish "not yet generated" via errors.Is(err, fs.ErrNotExist), which
// passes through from the read.
//
// Parameters:
//   - path: Lock file location
//
// Returns:
//   - *Lockfile: Parsed lock file
//   - error: Read failure (passthrough) or parse failure
func Load(path string) (*Lockfile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lf, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return lf, nil
}

// Parse parses lock file content.
//
// Parameters:
//   - content: Raw JSON bytes
//
// Returns:
//   - *Lockfile: Parsed lock file with key order preserved
//   - error: Parse failure, nil on success
func Parse(content []byte) (*Lockfile, error) {
	doc := orderedmap.New()
	if err := json.Unmarshal(content, doc); err != nil {
		return nil, err
	}
	return &Lockfile{doc: doc}, nil
}

// Meta returns the _meta section.
//
// Missing fields decode to zero values; a lock file without _meta yields an
// empty Meta.
//
// Returns:
//   - Meta: Parsed metadata
func (l *Lockfile) Meta() Meta {
	meta := Meta{Requires: map[string]string{}}
	raw, ok := tableValue(l.doc.Get("_meta"))
	if !ok {
		return meta
	}

	if hashes, ok := tableValue(raw.Get("hash")); ok {
		if sha, ok := hashes.Get("sha256"); ok {
			meta.Hash, _ = sha.(string)
		}
	}
	if spec, ok := raw.Get("pipfile-spec"); ok {
		if f, ok := spec.(float64); ok {
			meta.PipfileSpec = int(f)
		}
	}
	if requires, ok := tableValue(raw.Get("requires")); ok {
		for _, key := range requires.Keys() {
			if value, ok := requires.Get(key); ok {
				meta.Requires[key] = fmt.Sprintf("%v", value)
			}
		}
	}
	if sources, ok := raw.Get("sources"); ok {
		if list, ok := sources.([]any); ok {
			for _, entry := range list {
				src, ok := sourceFromEntry(entry)
				if !ok {
					continue
				}
				meta.Sources = append(meta.Sources, src)
			}
		}
	}
	return meta
}

// Default returns the resolved production packages.
//
// Returns:
//   - map[string]Package: Entries of the "default" section keyed by name
func (l *Lockfile) Default() map[string]Package {
	return l.section("default")
}

// Develop returns the resolved development packages.
//
// Returns:
//   - map[string]Package: Entries of the "develop" section keyed by name
func (l *Lockfile) Develop() map[string]Package {
	return l.section("develop")
}

// SectionNames returns the package names of a section in their recorded order.
//
// Parameters:
//   - section: "default" or "develop"
//
// Returns:
//   - []string: Ordered package names; nil when the section is absent
func (l *Lockfile) SectionNames(section string) []string {
	raw, ok := tableValue(l.doc.Get(section))
	if !ok {
		return nil
	}
	return raw.Keys()
}

// IsStaleFor reports whether the lock file was generated from a manifest
// with a different content hash.
//
// Parameters:
//   - pipfileHash: Current manifest hash (see pipfile.Hash)
//
// Returns:
//   - bool: true when the recorded hash differs and a re-lock is needed
func (l *Lockfile) IsStaleFor(pipfileHash string) bool {
	return l.Meta().Hash != pipfileHash
}

// SetHash records a new manifest hash in _meta.hash.sha256, creating the
// intermediate tables when absent.
//
// Parameters:
//   - hash: Lowercase hex sha256 digest
func (l *Lockfile) SetHash(hash string) {
	meta, ok := tablePointer(l.doc, "_meta")
	if !ok {
		meta = orderedmap.New()
		l.doc.Set("_meta", meta)
	}
	hashes, ok := tablePointer(meta, "hash")
	if !ok {
		hashes = orderedmap.New()
		meta.Set("hash", hashes)
	}
	hashes.Set("sha256", hash)
}

// SetPackage adds or replaces a package entry in a section, creating the
// section when absent. Existing entries keep their position.
//
// Parameters:
//   - section: "default" or "develop"
//   - name: Package name
//   - pkg: Resolved entry
func (l *Lockfile) SetPackage(section, name string, pkg Package) {
	table, ok := tablePointer(l.doc, section)
	if !ok {
		table = orderedmap.New()
		l.doc.Set(section, table)
	}

	entry := orderedmap.New()
	if len(pkg.Hashes) > 0 {
		entry.Set("hashes", pkg.Hashes)
	}
	if pkg.Index != "" {
		entry.Set("index", pkg.Index)
	}
	if pkg.Path != "" {
		entry.Set("path", pkg.Path)
	}
	if pkg.Editable {
		entry.Set("editable", true)
	}
	if pkg.Version != "" {
		entry.Set("version", pkg.Version)
	}
	table.Set(name, entry)
}

// Render serializes the lock file with its original key order and the
// four-space indentation the tool under test writes.
//
// Returns:
//   - []byte: JSON content with a trailing newline and line-feed endings
//   - error: Serialization failure, nil on success
func (l *Lockfile) Render() ([]byte, error) {
	data, err := json.MarshalIndent(l.doc, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Save writes the rendered lock file to disk, preserving the line-ending
// convention of an existing file at the path.
//
// Parameters:
//   - path: Destination file
//
// Returns:
//   - error: Serialization or write failure, nil on success
func (l *Lockfile) Save(path string) error {
	data, err := l.Render()
	if err != nil {
		return err
	}
	return textfile.WriteFilePreserving(path, data, 0o644)
}

// section decodes one package section into typed entries.
func (l *Lockfile) section(name string) map[string]Package {
	packages := make(map[string]Package)
	raw, ok := tableValue(l.doc.Get(name))
	if !ok {
		return packages
	}

	for _, pkgName := range raw.Keys() {
		entry, ok := tableValue(raw.Get(pkgName))
		if !ok {
			continue
		}
		pkg := Package{}
		if version, ok := entry.Get("version"); ok {
			pkg.Version, _ = version.(string)
		}
		if index, ok := entry.Get("index"); ok {
			pkg.Index, _ = index.(string)
		}
		if path, ok := entry.Get("path"); ok {
			pkg.Path, _ = path.(string)
		}
		if editable, ok := entry.Get("editable"); ok {
			pkg.Editable, _ = editable.(bool)
		}
		if hashes, ok := entry.Get("hashes"); ok {
			if list, ok := hashes.([]any); ok {
				for _, h := range list {
					if s, ok := h.(string); ok {
						pkg.Hashes = append(pkg.Hashes, s)
					}
				}
			}
		}
		packages[pkgName] = pkg
	}
	return packages
}

// tableValue normalizes a nested value to an ordered map. Unmarshalled
// documents nest values, while programmatically built ones nest pointers.
func tableValue(value any, ok bool) (*orderedmap.OrderedMap, bool) {
	if !ok {
		return nil, false
	}
	switch v := value.(type) {
	case orderedmap.OrderedMap:
		return &v, true
	case *orderedmap.OrderedMap:
		return v, true
	default:
		return nil, false
	}
}

// tablePointer fetches a nested table for mutation, re-setting the entry as
// a pointer so the mutation is visible in the parent document.
func tablePointer(parent *orderedmap.OrderedMap, key string) (*orderedmap.OrderedMap, bool) {
	table, ok := tableValue(parent.Get(key))
	if !ok {
		return nil, false
	}
	parent.Set(key, table)
	return table, true
}

// sourceFromEntry decodes one _meta.sources element.
func sourceFromEntry(entry any) (pipfile.Source, bool) {
	table, ok := tableValue(entry, true)
	if !ok {
		return pipfile.Source{}, false
	}
	src := pipfile.Source{}
	if name, ok := table.Get("name"); ok {
		src.Name, _ = name.(string)
	}
	if url, ok := table.Get("url"); ok {
		src.URL, _ = url.(string)
	}
	if verify, ok := table.Get("verify_ssl"); ok {
		if b, ok := verify.(bool); ok {
			src.VerifySSL = b
		}
	}
	return src, src.Name != ""
}
