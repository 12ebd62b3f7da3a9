// Package project locates the project a harness run belongs to and loads its configuration.
package project

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigFileName is the name of the configuration file marking a project root.
const ConfigFileName = "runtests.json"

// ErrNoProjectRoot is returned when runtests.json is not found.
var ErrNoProjectRoot = errors.New("runtests.json not found in the current directory or any parent")

// FindRootFrom walks up from the given directory until it finds runtests.json.
func FindRootFrom(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", ErrNoProjectRoot
		}
		dir = parent
	}
}
