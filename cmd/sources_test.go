package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipdrive/pipdrive/pkg/errors"
	"github.com/pipdrive/pipdrive/pkg/testutil"
)

const multiSourcePipfile = `[[source]]
url = "https://pypi.org/simple"
verify_ssl = true
name = "pypi"

[[source]]
url = "https://${MIRROR_HOST}/simple"
verify_ssl = false
name = "mirror"

[packages]
pytz = "*"
`

func TestSourcesCommand(t *testing.T) {
	t.Setenv("MIRROR_HOST", "mirror.example.com")
	dir := testutil.ProjectDir(t, multiSourcePipfile)

	out, err := executeCommand(t, "sources", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "URL")
	assert.Contains(t, out, "pypi")
	assert.Contains(t, out, "https://pypi.org/simple")
	// Placeholders resolve for display
	assert.Contains(t, out, "https://mirror.example.com/simple")
	assert.NotContains(t, out, "${MIRROR_HOST}")
}

func TestSourcesRaw(t *testing.T) {
	t.Setenv("MIRROR_HOST", "mirror.example.com")
	dir := testutil.ProjectDir(t, multiSourcePipfile)

	out, err := executeCommand(t, "sources", "--raw", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "https://${MIRROR_HOST}/simple")
	assert.NotContains(t, out, "mirror.example.com")
}

func TestSourcesDeclarationOrder(t *testing.T) {
	dir := testutil.ProjectDir(t, multiSourcePipfile)

	out, err := executeCommand(t, "sources", dir)
	require.NoError(t, err)

	assert.Less(t, strings.Index(out, "pypi"), strings.Index(out, "mirror"))
}

func TestSourcesNoManifest(t *testing.T) {
	_, err := executeCommand(t, "sources", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errors.ExitFailure, errors.GetExitCode(err))
	assert.Contains(t, err.Error(), "no Pipfile found")
}

func TestSourcesInvalidManifest(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "Pipfile", "[[source\nbroken")

	_, err := executeCommand(t, "sources", dir)
	require.Error(t, err)
	assert.Equal(t, errors.ExitConfigError, errors.GetExitCode(err))
}

func TestSourcesEmpty(t *testing.T) {
	dir := testutil.ProjectDir(t, "[packages]\npytz = \"*\"\n")

	out, err := executeCommand(t, "sources", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No sources declared")
}
