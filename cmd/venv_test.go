package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipdrive/pipdrive/pkg/envguard"
	"github.com/pipdrive/pipdrive/pkg/errors"
	"github.com/pipdrive/pipdrive/pkg/testutil"
)

// fakeVenv lays out a minimal virtual environment with one installed
// package under projectDir/.venv.
func fakeVenv(t *testing.T, projectDir string) string {
	t.Helper()

	root := filepath.Join(projectDir, ".venv")
	site := filepath.Join(root, "lib", "python3.12", "site-packages")
	require.NoError(t, os.MkdirAll(filepath.Join(site, "pytz-2021.3.dist-info"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin"), 0o755))

	metadata := "Metadata-Version: 2.1\nName: pytz\nVersion: 2021.3\n"
	testutil.WriteFile(t, site, "pytz-2021.3.dist-info/METADATA", metadata)
	return root
}

func TestVenvCommand(t *testing.T) {
	t.Setenv("PIPENV_IGNORE_VIRTUALENVS", "1")
	dir := testutil.ProjectDir(t, testutil.MinimalPipfile)
	root := fakeVenv(t, dir)

	out, err := executeCommand(t, "venv", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Root:        "+root)
	assert.Contains(t, out, "Interpreter: ")
	assert.NotContains(t, out, "pytz")
}

func TestVenvPackages(t *testing.T) {
	t.Setenv("PIPENV_IGNORE_VIRTUALENVS", "1")
	dir := testutil.ProjectDir(t, testutil.MinimalPipfile)
	fakeVenv(t, dir)

	out, err := executeCommand(t, "venv", "--packages", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "pytz")
}

func TestVenvPackagesEmpty(t *testing.T) {
	t.Setenv("PIPENV_IGNORE_VIRTUALENVS", "1")
	dir := testutil.ProjectDir(t, testutil.MinimalPipfile)
	root := filepath.Join(dir, ".venv")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin"), 0o755))

	out, err := executeCommand(t, "venv", "--packages", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No packages installed")
}

func TestVenvHonorsActivatedEnvironment(t *testing.T) {
	dir := testutil.ProjectDir(t, testutil.MinimalPipfile)

	activated := filepath.Join(t.TempDir(), "elsewhere-venv")
	require.NoError(t, os.MkdirAll(filepath.Join(activated, "bin"), 0o755))

	guard := envguard.Snapshot()
	defer guard.Restore()
	os.Setenv("VIRTUAL_ENV", activated)
	os.Unsetenv("PIPENV_IGNORE_VIRTUALENVS")

	out, err := executeCommand(t, "venv", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Root:        "+activated)
}

func TestVenvMissing(t *testing.T) {
	t.Setenv("PIPENV_IGNORE_VIRTUALENVS", "1")
	dir := testutil.ProjectDir(t, testutil.MinimalPipfile)

	_, err := executeCommand(t, "venv", dir)
	require.Error(t, err)
	assert.Equal(t, errors.ExitFailure, errors.GetExitCode(err))
	assert.Contains(t, err.Error(), "no virtual environment")
}
