// Package toolchain describes the external toolchains that execute test artifacts.
package toolchain

import (
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Toolchain is the external compiler/interpreter invoked once per artifact as
// <binary> <flags...> <artifact-path>.
type Toolchain struct {
	Name    string
	Extends string
	Binary  string
	Flags   []string
	Suffix  string            // Test-file suffix this toolchain runs
	Env     map[string]string // Extra environment for every run
}

// Command returns the full argument vector for one artifact, binary first.
func (t *Toolchain) Command(artifactPath string) []string {
	argv := make([]string, 0, len(t.Flags)+2)
	argv = append(argv, t.Binary)
	argv = append(argv, t.Flags...)
	argv = append(argv, artifactPath)
	return argv
}

// String renders the command template with a placeholder for the artifact.
func (t *Toolchain) String() string {
	return strings.Join(t.Command("<artifact>"), " ")
}

// Title returns the display name of the toolchain.
func (t *Toolchain) Title() string {
	return DisplayName(t.Name)
}

// DisplayName title-cases a toolchain name for tables and logs.
func DisplayName(name string) string {
	return cases.Title(language.English).String(name)
}

// EnvList returns the extra environment as sorted KEY=VALUE pairs.
func (t *Toolchain) EnvList() []string {
	keys := slices.Sorted(maps.Keys(t.Env))
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+t.Env[k])
	}
	return env
}

// clone returns a deep copy so presets are never mutated through a resolved toolchain.
func (t *Toolchain) clone() *Toolchain {
	c := *t
	c.Flags = slices.Clone(t.Flags)
	c.Env = maps.Clone(t.Env)
	return &c
}

// mojoTestFlags are the fixed flags of a test run: enable every assertion
// and put the project root on the import path.
var mojoTestFlags = []string{"-D", "ASSERT=all", "-I", "."}

// builtinToolchains defines the preset toolchains.
var builtinToolchains = map[string]*Toolchain{
	"mojo": {
		Name:   "mojo",
		Binary: "mojo",
		Flags:  mojoTestFlags,
		Suffix: ".mojo",
	},
	"magic": {
		Name:    "magic",
		Extends: "mojo",
		Binary:  "magic",
		Flags:   append([]string{"run", "mojo"}, mojoTestFlags...),
		Suffix:  ".mojo",
	},
	"pixi": {
		Name:    "pixi",
		Extends: "mojo",
		Binary:  "pixi",
		Flags:   append([]string{"run", "mojo"}, mojoTestFlags...),
		Suffix:  ".mojo",
	},
}

// DefaultName is the toolchain used when none is configured.
const DefaultName = "mojo"

// Get retrieves a copy of a built-in toolchain by name.
func Get(name string) (*Toolchain, bool) {
	tc, ok := builtinToolchains[name]
	if !ok {
		return nil, false
	}
	return tc.clone(), true
}

// List returns the sorted names of all built-in toolchains.
func List() []string {
	return slices.Sorted(maps.Keys(builtinToolchains))
}

// IsBuiltin checks if a toolchain name is a built-in toolchain.
func IsBuiltin(name string) bool {
	_, ok := builtinToolchains[name]
	return ok
}
