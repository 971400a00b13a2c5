package pipfile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pipdrive/pipdrive/pkg/textfile"
)

// Render produces the normalized TOML representation of the manifest.
//
// It performs the following operations:
//   - Emits [[source]] blocks in declaration order (url, verify_ssl, name)
//   - Emits [packages] and [dev-packages] with entries in declaration order
//   - Normalizes every requirement to a single line: a bare version string
//     when possible, an inline table otherwise
//
// Outline tables ([packages.name] with a version key) never survive a
// render; re-rendering the output is a fixed point, so a rewrite is
// idempotent.
//
// Returns:
//   - []byte: Manifest content with line-feed endings
func (p *Pipfile) Render() []byte {
	var b strings.Builder

	for _, src := range p.sources {
		b.WriteString("[[source]]\n")
		fmt.Fprintf(&b, "url = %q\n", src.URL)
		fmt.Fprintf(&b, "verify_ssl = %t\n", src.VerifySSL)
		fmt.Fprintf(&b, "name = %q\n", src.Name)
		b.WriteString("\n")
	}

	b.WriteString("[packages]\n")
	for _, name := range p.packageOrder {
		fmt.Fprintf(&b, "%s = %s\n", name, renderRequirement(p.Packages[name]))
	}
	b.WriteString("\n[dev-packages]\n")
	for _, name := range p.devOrder {
		fmt.Fprintf(&b, "%s = %s\n", name, renderRequirement(p.DevPackages[name]))
	}

	if len(p.Requires) > 0 {
		b.WriteString("\n[requires]\n")
		for _, key := range sortedKeys(p.Requires) {
			fmt.Fprintf(&b, "%s = %q\n", key, p.Requires[key])
		}
	}
	if len(p.Scripts) > 0 {
		b.WriteString("\n[scripts]\n")
		for _, key := range sortedKeys(p.Scripts) {
			fmt.Fprintf(&b, "%s = %q\n", key, p.Scripts[key])
		}
	}

	return []byte(b.String())
}

// Save writes the rendered manifest to disk, preserving the line-ending
// convention of an existing file at the path.
//
// Parameters:
//   - path: Destination file
//
// Returns:
//   - error: Write failure, nil on success
func (p *Pipfile) Save(path string) error {
	return textfile.WriteFilePreserving(path, p.Render(), 0o644)
}

// renderRequirement renders a requirement entry in its single-line form.
func renderRequirement(req Requirement) string {
	if req.bare() {
		version := req.Version
		if version == "" {
			version = "*"
		}
		return fmt.Sprintf("%q", version)
	}

	var parts []string
	if req.Version != "" {
		parts = append(parts, fmt.Sprintf("version = %q", req.Version))
	}
	if len(req.Extras) > 0 {
		quoted := make([]string, len(req.Extras))
		for i, extra := range req.Extras {
			quoted[i] = fmt.Sprintf("%q", extra)
		}
		parts = append(parts, fmt.Sprintf("extras = [%s]", strings.Join(quoted, ", ")))
	}
	if req.Index != "" {
		parts = append(parts, fmt.Sprintf("index = %q", req.Index))
	}
	if req.Path != "" {
		parts = append(parts, fmt.Sprintf("path = %q", req.Path))
	}
	if req.Editable {
		parts = append(parts, "editable = true")
	}
	if req.Markers != "" {
		parts = append(parts, fmt.Sprintf("markers = %q", req.Markers))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// sortedKeys returns map keys in sorted order for deterministic rendering.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
