// Package templater renders a package recipe from project metadata.
package templater

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/emberjson/runtests/internal/errors"
	"github.com/emberjson/runtests/internal/schema"
	"github.com/emberjson/runtests/internal/version"
)

// Project is the [project] table of the manifest.
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	License     string `json:"license"`
	LicenseFile string `json:"license-file"`
	Homepage    string `json:"homepage"`
	Repository  string `json:"repository"`
	Version     string `json:"version"`
}

// Manifest is the subset of a project manifest the recipe needs.
type Manifest struct {
	Project      Project
	Dependencies []Dependency // Document order
}

// LoadManifest decodes a TOML project manifest. The [project] table is checked
// against the project schema; every dependency must be a constraint string.
func LoadManifest(path string) (*Manifest, error) {
	var raw struct {
		Project      map[string]interface{} `toml:"project"`
		Dependencies map[string]interface{} `toml:"dependencies"`
	}
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, errors.Configf("%s: %v", path, err)
	}
	if raw.Project == nil {
		return nil, errors.Configf("%s: missing [project] table", path)
	}

	data, err := json.Marshal(raw.Project)
	if err != nil {
		return nil, errors.Configf("%s: [project]: %v", path, err)
	}
	if err := schema.ValidateProject(data); err != nil {
		return nil, errors.Configf("%s: [project]: %v", path, err)
	}

	m := &Manifest{}
	if err := json.Unmarshal(data, &m.Project); err != nil {
		return nil, errors.Configf("%s: [project]: %v", path, err)
	}

	// Keys preserves document order, which the decoded map loses.
	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "dependencies" {
			continue
		}
		name := key[1]
		constraint, ok := raw.Dependencies[name].(string)
		if !ok {
			return nil, errors.Configf("%s: dependency %q: constraint must be a string, got %T", path, name, raw.Dependencies[name])
		}
		m.Dependencies = append(m.Dependencies, Dependency{Name: name, Constraint: constraint})
	}

	return m, nil
}

// String returns "name version" for log lines.
func (p Project) String() string {
	return fmt.Sprintf("%s %s", p.Name, p.Version)
}

// versionWarnings reports a project version or dependency constraint whose
// version part is not a recognisable package version. The recipe is still
// rendered verbatim.
func (m *Manifest) versionWarnings() []string {
	var warnings []string
	if err := version.Validate(m.Project.Version); err != nil {
		warnings = append(warnings, fmt.Sprintf("project version: %v", err))
	}
	for _, d := range m.Dependencies {
		_, v, err := SplitConstraint(d.Constraint)
		if err != nil {
			continue
		}
		if err := version.Validate(v); err != nil {
			warnings = append(warnings, fmt.Sprintf("dependency %q: %v", d.Name, err))
		}
	}
	return warnings
}
