package project

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/emberjson/runtests/internal/config"
)

// Project represents a loaded runtests project.
type Project struct {
	Root       string // Absolute project directory
	ConfigPath string // Empty when running on built-in defaults
	Config     *config.Config
	Warnings   []string
}

// Load finds the project enclosing startDir and loads its configuration.
// Without a runtests.json, startDir itself is the project and the built-in
// defaults apply.
func Load(startDir string) (*Project, error) {
	root, err := FindRootFrom(startDir)
	if errors.Is(err, ErrNoProjectRoot) {
		abs, absErr := filepath.Abs(startDir)
		if absErr != nil {
			return nil, absErr
		}
		return &Project{Root: abs, Config: config.Default()}, nil
	}
	if err != nil {
		return nil, err
	}
	return LoadFrom(root)
}

// LoadFrom loads a project from a specified root directory.
func LoadFrom(root string) (*Project, error) {
	return LoadConfigFile(root, filepath.Join(root, ConfigFileName))
}

// LoadConfigFile loads the project at root using an explicit configuration file.
func LoadConfigFile(root, configPath string) (*Project, error) {
	cfg, warnings, err := config.LoadAndValidate(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	return &Project{
		Root:       abs,
		ConfigPath: configPath,
		Config:     cfg,
		Warnings:   warnings,
	}, nil
}

// Resolve returns p relative to the project root, unless it is absolute.
func (p *Project) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, path)
}

// TestRoot returns the discovery root as a path relative to cwd when it lies
// beneath it, so reported artifact paths read like "test/emberjson/test_x.mojo".
func (p *Project) TestRoot(cwd string) string {
	abs := p.Resolve(p.Config.Root)
	if rel, err := filepath.Rel(cwd, abs); err == nil && filepath.IsLocal(rel) {
		return rel
	}
	return abs
}

// Workdir returns the directory toolchain runs execute in.
func (p *Project) Workdir() string {
	if p.Config.Workdir == "" {
		return p.Root
	}
	return p.Resolve(p.Config.Workdir)
}
