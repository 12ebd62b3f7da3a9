package toolchain

import (
	"os"
	"path/filepath"
)

// MarkerFile defines a project file and the toolchain it implies.
type MarkerFile struct {
	Pattern   string
	Toolchain string
}

// markerFiles defines the auto-detection order for toolchains.
// First match wins.
var markerFiles = []MarkerFile{
	{"pixi.toml", "pixi"},
	{"mojoproject.toml", "magic"},
}

// Detect returns the toolchain implied by marker files in dir,
// falling back to DefaultName when none is present.
func Detect(dir string) string {
	for _, marker := range markerFiles {
		if _, err := os.Stat(filepath.Join(dir, marker.Pattern)); err == nil {
			return marker.Toolchain
		}
	}
	return DefaultName
}
