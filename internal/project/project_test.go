package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberjson/runtests/internal/errors"
)

func TestFindRootFrom(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(`{}`), 0o644))
	nested := filepath.Join(root, "test", "emberjson")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := FindRootFrom(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestFindRootFrom_NotFound(t *testing.T) {
	t.Parallel()

	_, err := FindRootFrom(t.TempDir())
	assert.ErrorIs(t, err, ErrNoProjectRoot)
}

func TestFindRootFrom_IgnoresDirectoryNamedLikeConfig(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ConfigFileName), 0o755))

	_, err := FindRootFrom(root)
	assert.ErrorIs(t, err, ErrNoProjectRoot)
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, p.Root)
	assert.Empty(t, p.ConfigPath)
	assert.Equal(t, "test/emberjson", p.Config.Root)
	assert.Equal(t, dir, p.Workdir())
	assert.Equal(t, filepath.Join("test", "emberjson"), p.TestRoot(dir))
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName),
		[]byte(`{"root": "tests", "workdir": "build", "extra": 1}`), 0o644))
	sub := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	p, err := Load(sub)
	require.NoError(t, err)
	assert.Equal(t, root, p.Root)
	assert.Equal(t, filepath.Join(root, ConfigFileName), p.ConfigPath)
	assert.Equal(t, filepath.Join(root, "build"), p.Workdir())
	assert.Len(t, p.Warnings, 1)

	// From a subdirectory the test root is outside cwd, so it stays absolute.
	assert.Equal(t, filepath.Join(root, "tests"), p.TestRoot(sub))
	assert.Equal(t, "tests", p.TestRoot(root))
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(`{"parallel": "many"}`), 0o644))

	_, err := Load(root)
	require.Error(t, err)
	assert.Equal(t, errors.ExitConfigError, errors.GetExitCode(err))
}

func TestResolve(t *testing.T) {
	t.Parallel()
	p := &Project{Root: filepath.FromSlash("/repo")}

	assert.Equal(t, "", p.Resolve(""))
	assert.Equal(t, filepath.Join(p.Root, "a", "b"), p.Resolve("a/b"))
	abs := filepath.Join(t.TempDir(), "x")
	assert.Equal(t, abs, p.Resolve(abs))
}
