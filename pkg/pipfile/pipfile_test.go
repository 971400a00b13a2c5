package pipfile

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoSourceManifest = `[[source]]
url = "https://localhost:8080/simple"
verify_ssl = false
name = "testindex"

[[source]]
url = "https://pypi.org/simple"
verify_ssl = "true"
name = "pypi"

[packages]
pytz = "*"
six = {version = "*", index = "pypi"}

[dev-packages]
`

// TestParse tests the behavior of Parse.
//
// It verifies:
//   - Sources keep declaration order
//   - String verify_ssl values are normalized to booleans
//   - Bare-string and inline-table requirements both decode
func TestParse(t *testing.T) {
	pf, err := Parse([]byte(twoSourceManifest))
	require.NoError(t, err)

	sources := pf.RawSources()
	require.Len(t, sources, 2)
	assert.Equal(t, "testindex", sources[0].Name)
	assert.False(t, sources[0].VerifySSL)
	assert.Equal(t, "pypi", sources[1].Name)
	assert.True(t, sources[1].VerifySSL)

	assert.Equal(t, Requirement{Version: "*"}, pf.Packages["pytz"])
	assert.Equal(t, Requirement{Version: "*", Index: "pypi"}, pf.Packages["six"])
	assert.Equal(t, []string{"pytz", "six"}, pf.PackageNames())
	assert.Empty(t, pf.DevPackageNames())
}

// TestParseOutlineTable tests outline-table requirement entries.
//
// It verifies:
//   - [packages.name] tables decode like inline tables
//   - The outlined key keeps its declaration position
func TestParseOutlineTable(t *testing.T) {
	content := `[packages.requests]
version = "*"
`
	pf, err := Parse([]byte(content))
	require.NoError(t, err)
	assert.Equal(t, Requirement{Version: "*"}, pf.Packages["requests"])
	assert.Equal(t, []string{"requests"}, pf.PackageNames())
}

// TestParseErrors tests malformed manifests.
//
// It verifies:
//   - Invalid TOML is rejected
//   - Sources without name or url are rejected
//   - Invalid verify_ssl strings are rejected
func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"invalid toml":       "[packages\npytz",
		"source without url": "[[source]]\nname = \"pypi\"\n",
		"source without name": `[[source]]
url = "https://pypi.org/simple"
`,
		"bad verify_ssl": `[[source]]
url = "https://pypi.org/simple"
name = "pypi"
verify_ssl = "maybe"
`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content))
			assert.Error(t, err)
		})
	}
}

// TestLoad tests the behavior of Load.
//
// It verifies:
//   - Manifests load from disk
//   - A missing file surfaces the underlying read error
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(twoSourceManifest), 0o644))

	pf, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, pf.RawSources(), 2)

	_, err = Load(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestSourcesEnvExpansion tests placeholder resolution in source URLs.
//
// It verifies:
//   - ${VAR} placeholders resolve against the supplied environment at read time
//   - The raw on-disk representation never contains the resolved value
//   - Unset variables leave the placeholder literal
//   - Resolution is idempotent
func TestSourcesEnvExpansion(t *testing.T) {
	content := `[[source]]
url = 'https://${TEST_HOST}/simple'
verify_ssl = false
name = "pypi"

[packages]
pytz = "*"
`
	pf, err := Parse([]byte(content))
	require.NoError(t, err)

	env := map[string]string{"TEST_HOST": "localhost:5000"}
	sources := pf.Sources(env)
	require.Len(t, sources, 1)
	assert.Equal(t, "https://localhost:5000/simple", sources[0].URL)

	// Raw view and re-render never leak the resolved host.
	assert.Equal(t, "https://${TEST_HOST}/simple", pf.RawSources()[0].URL)
	assert.NotContains(t, string(pf.Render()), "localhost:5000")

	// Unset variable: placeholder stays literal.
	assert.Equal(t, "https://${TEST_HOST}/simple", pf.Sources(map[string]string{})[0].URL)

	// Idempotent: expanding an already-resolved URL changes nothing.
	resolved := ExpandURL(sources[0].URL, func(string) (string, bool) { return "other", true })
	assert.Equal(t, "https://localhost:5000/simple", resolved)
}

// TestSourceLookupAgreement tests agreement across the lookup methods.
//
// It verifies:
//   - GetSourceByName, GetSourceByURL, and FindSource return the same
//     field-set as the Sources listing for every declared source
func TestSourceLookupAgreement(t *testing.T) {
	pf, err := Parse([]byte(twoSourceManifest))
	require.NoError(t, err)

	env := map[string]string{}
	for _, src := range pf.Sources(env) {
		byName, err := pf.GetSourceByName(src.Name, env)
		require.NoError(t, err)
		assert.Equal(t, src, byName)

		byURL, err := pf.GetSourceByURL(src.URL, env)
		require.NoError(t, err)
		assert.Equal(t, src, byURL)

		foundName, err := pf.FindSource(src.Name, env)
		require.NoError(t, err)
		assert.Equal(t, src, foundName)

		foundURL, err := pf.FindSource(src.URL, env)
		require.NoError(t, err)
		assert.Equal(t, src, foundURL)
	}
}

// TestSourceLookupMiss tests the NotFound condition.
//
// It verifies:
//   - All lookup methods wrap ErrSourceNotFound on a miss
func TestSourceLookupMiss(t *testing.T) {
	pf, err := Parse([]byte(twoSourceManifest))
	require.NoError(t, err)

	_, err = pf.GetSourceByName("nope", nil)
	assert.ErrorIs(t, err, ErrSourceNotFound)

	_, err = pf.GetSourceByURL("https://nope.invalid/simple", nil)
	assert.ErrorIs(t, err, ErrSourceNotFound)

	_, err = pf.FindSource("nope", nil)
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

// TestDuplicateURLFirstWins tests duplicate-URL resolution order.
//
// It verifies:
//   - GetSourceByURL and FindSource agree on the first declaration
func TestDuplicateURLFirstWins(t *testing.T) {
	content := `[[source]]
url = "https://pypi.org/simple"
verify_ssl = true
name = "first"

[[source]]
url = "https://pypi.org/simple"
verify_ssl = false
name = "second"
`
	pf, err := Parse([]byte(content))
	require.NoError(t, err)

	byURL, err := pf.GetSourceByURL("https://pypi.org/simple", nil)
	require.NoError(t, err)
	found, err := pf.FindSource("https://pypi.org/simple", nil)
	require.NoError(t, err)

	assert.Equal(t, "first", byURL.Name)
	assert.Equal(t, byURL, found)
}

// TestValidate tests index-reference validation.
//
// It verifies:
//   - References to declared sources pass
//   - Dangling index references are reported with their table and package
func TestValidate(t *testing.T) {
	pf, err := Parse([]byte(twoSourceManifest))
	require.NoError(t, err)
	assert.NoError(t, pf.Validate())

	pf.SetPackage("requests", Requirement{Version: "*", Index: "ghost"})
	err = pf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "packages.requests -> ghost")
}

// TestRenderNormalizesOutlineTables tests the rewrite property.
//
// It verifies:
//   - An outline table renders as a single-line inline form
//   - Re-parsing and re-rendering is a fixed point
func TestRenderNormalizesOutlineTables(t *testing.T) {
	content := `[packages.requests]
version = "*"
`
	pf, err := Parse([]byte(content))
	require.NoError(t, err)

	rendered := string(pf.Render())
	assert.NotContains(t, rendered, "[packages.requests]")
	assert.Contains(t, rendered, `requests = {version = "*"}`)

	reparsed, err := Parse([]byte(rendered))
	require.NoError(t, err)
	assert.Equal(t, rendered, string(reparsed.Render()))
}

// TestRenderRequirementForms tests requirement rendering.
//
// It verifies:
//   - Version-only requirements render as bare strings
//   - Inline tables include only the set attributes
//   - Empty requirements default to "*"
func TestRenderRequirementForms(t *testing.T) {
	assert.Equal(t, `"*"`, renderRequirement(Requirement{Version: "*"}))
	assert.Equal(t, `"==2.19.1"`, renderRequirement(Requirement{Version: "==2.19.1"}))
	assert.Equal(t, `"*"`, renderRequirement(Requirement{}))
	assert.Equal(t,
		`{version = "*", index = "pypi"}`,
		renderRequirement(Requirement{Version: "*", Index: "pypi"}))
	assert.Equal(t,
		`{extras = ["socks"], path = "./requests", editable = true}`,
		renderRequirement(Requirement{Path: "./requests", Editable: true, Extras: []string{"socks"}}))
}

// TestRenderRoundTrip tests parse/render stability on a full manifest.
//
// It verifies:
//   - Declaration order of sources and packages survives
//   - requires and scripts sections are emitted
func TestRenderRoundTrip(t *testing.T) {
	pf, err := Parse([]byte(twoSourceManifest))
	require.NoError(t, err)
	pf.Requires["python_version"] = "3.7"
	pf.Scripts["tests"] = "pytest -q"

	rendered := string(pf.Render())
	assert.Contains(t, rendered, "[[source]]")
	assert.Contains(t, rendered, `name = "testindex"`)
	assert.Contains(t, rendered, "[requires]\npython_version = \"3.7\"\n")
	assert.Contains(t, rendered, "[scripts]\ntests = \"pytest -q\"\n")

	reparsed, err := Parse([]byte(rendered))
	require.NoError(t, err)
	assert.Equal(t, pf.PackageNames(), reparsed.PackageNames())
	assert.Equal(t, pf.RawSources(), reparsed.RawSources())
}

// TestSave tests writing through the line-ending preserving path.
//
// It verifies:
//   - Fresh files are written with LF endings
//   - An existing CRLF file keeps CRLF after Save
func TestSave(t *testing.T) {
	pf, err := Parse([]byte(twoSourceManifest))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, pf.Save(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "\r\n")

	// Rewrite an existing CRLF file: convention is preserved.
	require.NoError(t, os.WriteFile(path, []byte("[packages]\r\n"), 0o644))
	require.NoError(t, pf.Save(path))
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[[source]]\r\n")
}

// TestHash tests manifest hashing.
//
// It verifies:
//   - Equal manifests hash equally
//   - A meaningful edit changes the hash
//   - The digest is hex-encoded sha256
func TestHash(t *testing.T) {
	pf, err := Parse([]byte(twoSourceManifest))
	require.NoError(t, err)
	other, err := Parse([]byte(twoSourceManifest))
	require.NoError(t, err)

	h1, err := pf.Hash()
	require.NoError(t, err)
	h2, err := other.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	other.SetPackage("requests", Requirement{Version: "*"})
	h3, err := other.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

// TestHashCanonicalForm tests the serialized shape the digest covers.
//
// The lock tool hashes compact JSON with keys sorted at every level, bare
// requirements left as plain strings, and no HTML escaping. The recorded
// _meta.hash only matches ours when we reproduce that form byte for byte.
//
// It verifies:
//   - Keys are sorted at every nesting level
//   - Bare requirements serialize as plain strings, tables as objects
//   - Comparison operators in version specifiers stay unescaped
//   - Hash is the sha256 digest of exactly that serialization
func TestHashCanonicalForm(t *testing.T) {
	content := `[[source]]
url = "https://pypi.org/simple"
verify_ssl = true
name = "pypi"

[packages]
pytz = "*"

[dev-packages]
pytest = {version = ">=8", index = "pypi"}

[requires]
python_version = "3.12"
`
	pf, err := Parse([]byte(content))
	require.NoError(t, err)

	want := `{"_meta":{"requires":{"python_version":"3.12"},"sources":[{"name":"pypi","url":"https://pypi.org/simple","verify_ssl":true}]},"default":{"pytz":"*"},"develop":{"pytest":{"index":"pypi","version":">=8"}}}`

	data, err := pf.canonicalJSON()
	require.NoError(t, err)
	assert.Equal(t, want, string(data))

	digest := sha256.Sum256([]byte(want))
	h, err := pf.Hash()
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(digest[:]), h)
}
