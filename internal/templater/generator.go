package templater

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/emberjson/runtests/internal/errors"
)

// Default locations, relative to the repository directory.
const (
	DefaultManifest = "mojoproject.toml"
	DefaultTemplate = "recipes/recipe.tmpl"
	DefaultOutput   = "recipes/recipe.yaml"
)

// Options locates the inputs and output of one rendering.
// Relative paths are resolved against RepoDir.
type Options struct {
	RepoDir  string
	Manifest string
	Template string
	Output   string
}

// DefaultOptions returns the conventional layout under repoDir.
func DefaultOptions(repoDir string) Options {
	return Options{
		RepoDir:  repoDir,
		Manifest: DefaultManifest,
		Template: DefaultTemplate,
		Output:   DefaultOutput,
	}
}

// Result describes a rendered recipe.
type Result struct {
	Path     string
	Content  string
	Manifest *Manifest
	Warnings []string
}

// Generator renders the recipe template.
type Generator struct {
	opts Options
}

// NewGenerator creates a new recipe generator.
func NewGenerator(opts Options) *Generator {
	if opts.Manifest == "" {
		opts.Manifest = DefaultManifest
	}
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}
	return &Generator{opts: opts}
}

func (g *Generator) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(g.opts.RepoDir, p)
}

// Render reads the manifest and template and returns the rendered recipe
// without writing it.
func (g *Generator) Render() (*Result, error) {
	manifest, err := LoadManifest(g.resolve(g.opts.Manifest))
	if err != nil {
		return nil, err
	}

	templatePath := g.resolve(g.opts.Template)
	template, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, errors.Configf("template file not found: %s", templatePath)
	}

	repoDir, err := filepath.Abs(g.opts.RepoDir)
	if err != nil {
		return nil, errors.Wrap(err, "resolve repository directory")
	}

	content, warnings, err := ResolvePlaceholders(string(template), &PlaceholderContext{
		Manifest: manifest,
		RepoDir:  filepath.ToSlash(repoDir),
	})
	if err != nil {
		return nil, errors.Configf("%s: %v", templatePath, err)
	}
	warnings = append(manifest.versionWarnings(), warnings...)

	out := g.resolve(g.opts.Output)
	if isYAML(out) {
		var doc interface{}
		if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
			warnings = append(warnings, "rendered recipe is not valid YAML: "+err.Error())
		}
	}

	return &Result{Path: out, Content: content, Manifest: manifest, Warnings: warnings}, nil
}

// Generate renders the recipe and writes it to the output path, overwriting it.
func (g *Generator) Generate() (*Result, error) {
	res, err := g.Render()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(res.Path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create output directory")
	}
	if err := os.WriteFile(res.Path, []byte(res.Content), 0o644); err != nil {
		return nil, errors.Wrap(err, "write recipe")
	}
	return res, nil
}

func isYAML(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	return ext == ".yaml" || ext == ".yml"
}
