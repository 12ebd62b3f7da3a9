package templater

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberjson/runtests/internal/errors"
)

func TestGenerator_RenderGolden(t *testing.T) {
	repo := filepath.Join("testdata", "project")
	res, err := NewGenerator(DefaultOptions(repo)).Render()
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	abs, err := filepath.Abs(repo)
	require.NoError(t, err)
	content := strings.ReplaceAll(res.Content, filepath.ToSlash(abs), "<repo>")

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "recipe", []byte(content))
}

func TestLoadManifest_DependencyOrder(t *testing.T) {
	m, err := LoadManifest(filepath.Join("testdata", "project", "mojoproject.toml"))
	require.NoError(t, err)

	assert.Equal(t, "emberjson", m.Project.Name)
	assert.Equal(t, "LICENSE", m.Project.LicenseFile)
	assert.Equal(t, []Dependency{
		{"max", ">=24.6.0"},
		{"python", "<3.13"},
		{"pytest", "8.3.4"},
	}, m.Dependencies)
}

func writeProject(t *testing.T, manifest, template string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultManifest), []byte(manifest), 0o644))
	if template != "" {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "recipes"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultTemplate), []byte(template), 0o644))
	}
	return dir
}

func TestGenerator_GenerateWritesOutput(t *testing.T) {
	dir := writeProject(t, `
[project]
name = "pkg"
version = "2.0"

[dependencies]
zeta = "1"
alpha = "<=3"
`, "name: {{NAME}}\nprefix: {{PREFIX}}\ndeps:\n{{DEPENDENCIES}}\n")

	// Stale output is overwritten.
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultOutput), []byte("stale"), 0o644))

	res, err := NewGenerator(DefaultOptions(dir)).Generate()
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, DefaultOutput))
	require.NoError(t, err)
	assert.Equal(t, res.Content, string(data))

	abs, _ := filepath.Abs(dir)
	assert.Equal(t,
		"name: pkg\nprefix: "+filepath.ToSlash(abs)+"/output\ndeps:\n    - zeta ==1\n    - alpha <=3\n",
		string(data))
}

func TestGenerator_Warnings(t *testing.T) {
	dir := writeProject(t, `
[project]
name = "pkg"
version = "2.0"
`, "name: {{NAME}}\nchannel: {{CHANNEL}}\nbad: [unclosed\n")

	res, err := NewGenerator(DefaultOptions(dir)).Render()
	require.NoError(t, err)
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "{{CHANNEL}}")
	assert.Contains(t, res.Warnings[1], "not valid YAML")
}

func TestGenerator_Errors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		template string
		want     string
	}{
		{"missing project", `[dependencies]` + "\nmax = \"1\"\n", "x", "missing [project] table"},
		{"schema violation", "[project]\nname = \"pkg\"\n", "x", "[project]"},
		{"non-string dependency", "[project]\nname = \"p\"\nversion = \"1\"\n[dependencies]\nmax = { version = \"1\" }\n", "x", "constraint must be a string"},
		{"bad constraint", "[project]\nname = \"p\"\nversion = \"1\"\n[dependencies]\nmax = \">=\"\n", "{{DEPENDENCIES}}", "operator but no version"},
		{"malformed toml", "[project\n", "x", DefaultManifest},
		{"missing template", "[project]\nname = \"p\"\nversion = \"1\"\n", "", "template file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeProject(t, tt.manifest, tt.template)
			_, err := NewGenerator(DefaultOptions(dir)).Generate()
			require.Error(t, err)
			assert.Equal(t, errors.KindConfig, errors.KindOf(err))
			assert.Contains(t, err.Error(), tt.want)

			_, statErr := os.Stat(filepath.Join(dir, DefaultOutput))
			assert.True(t, os.IsNotExist(statErr), "no output on error")
		})
	}
}

func TestGenerator_VersionWarnings(t *testing.T) {
	dir := writeProject(t, `
[project]
name = "pkg"
version = "v1-final"

[dependencies]
max = ">=24.6"
numpy = "latest"
python = "3.12.*"
`, "name: {{NAME}}\n")

	res, err := NewGenerator(DefaultOptions(dir)).Render()
	require.NoError(t, err)
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "project version")
	assert.Contains(t, res.Warnings[1], `dependency "numpy"`)
	assert.Equal(t, "name: pkg\n", res.Content)
}
