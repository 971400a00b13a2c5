package pipfile

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash computes the sha256 content hash of the manifest.
//
// The hash covers the raw (unexpanded) source URLs, the interpreter
// requirements, and both requirement tables. It must match the digest the
// tool under test records in the lock file's _meta.hash entry, so the
// projection is serialized exactly the way that tool serializes it: compact
// JSON with keys sorted at every nesting level, bare requirements kept as
// plain strings, and table requirements as objects. A lock file generated
// from this manifest records the same hash, which is how staleness is
// detected after a manifest edit.
//
// Returns:
//   - string: Lowercase hex sha256 digest
//   - error: Serialization failure, nil on success
func (p *Pipfile) Hash() (string, error) {
	data, err := p.canonicalJSON()
	if err != nil {
		return "", err
	}

	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:]), nil
}

// canonicalJSON serializes the hash projection. Maps are used throughout so
// encoding/json sorts keys, and the encoder's default compact separators
// match the lock tool's canonical form. HTML escaping is disabled because
// the tool hashes source URLs verbatim.
func (p *Pipfile) canonicalJSON() ([]byte, error) {
	sources := make([]map[string]any, 0, len(p.sources))
	for _, src := range p.sources {
		sources = append(sources, map[string]any{
			"name":       src.Name,
			"url":        src.URL,
			"verify_ssl": src.VerifySSL,
		})
	}

	requires := p.Requires
	if requires == nil {
		requires = map[string]string{}
	}

	projection := map[string]any{
		"_meta": map[string]any{
			"sources":  sources,
			"requires": requires,
		},
		"default": sectionProjection(p.Packages),
		"develop": sectionProjection(p.DevPackages),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(projection); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// sectionProjection converts a requirement table into its hashed shape. A
// bare requirement stays a plain string, everything else becomes an object
// holding only the fields the manifest declares.
func sectionProjection(section map[string]Requirement) map[string]any {
	out := make(map[string]any, len(section))
	for name, req := range section {
		if req.bare() {
			version := req.Version
			if version == "" {
				version = "*"
			}
			out[name] = version
			continue
		}

		entry := map[string]any{}
		if req.Version != "" {
			entry["version"] = req.Version
		}
		if req.Index != "" {
			entry["index"] = req.Index
		}
		if req.Path != "" {
			entry["path"] = req.Path
		}
		if req.Editable {
			entry["editable"] = req.Editable
		}
		if len(req.Extras) > 0 {
			entry["extras"] = req.Extras
		}
		if req.Markers != "" {
			entry["markers"] = req.Markers
		}
		out[name] = entry
	}
	return out
}
