package toolchain

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/emberjson/runtests/internal/config"
	"github.com/emberjson/runtests/internal/errors"
)

// Auto selects the toolchain by inspecting the project directory.
const Auto = "auto"

// Resolver handles toolchain resolution including custom toolchains and extension.
type Resolver struct {
	custom map[string]*Toolchain
}

// NewResolver creates a resolver with custom toolchains from configuration.
func NewResolver(custom map[string]config.ToolchainConfig) (*Resolver, error) {
	r := &Resolver{
		custom: make(map[string]*Toolchain),
	}

	// Sorted so the first reported error is stable.
	for _, name := range slices.Sorted(maps.Keys(custom)) {
		tc, err := buildCustomToolchain(name, custom[name])
		if err != nil {
			return nil, errors.Configf("toolchain %q: %v", name, err)
		}
		r.custom[name] = tc
	}

	return r, nil
}

// Resolve gets a toolchain by name, checking custom toolchains first.
// The name "auto" detects the toolchain from marker files in projectDir.
func (r *Resolver) Resolve(name, projectDir string) (*Toolchain, error) {
	if name == "" {
		name = DefaultName
	}
	if name == Auto {
		name = Detect(projectDir)
	}

	if tc, ok := r.custom[name]; ok {
		return tc.clone(), nil
	}
	if tc, ok := Get(name); ok {
		return tc, nil
	}

	return nil, errors.Configf("unknown toolchain %q (built-in: %s)", name, strings.Join(List(), ", "))
}

// Overrides reports whether a custom toolchain replaces the built-in preset of the same name.
func (r *Resolver) Overrides(name string) bool {
	_, ok := r.custom[name]
	return ok && IsBuiltin(name)
}

// buildCustomToolchain creates a Toolchain from configuration.
// Unset fields are inherited from the extended built-in.
func buildCustomToolchain(name string, cfg config.ToolchainConfig) (*Toolchain, error) {
	tc := &Toolchain{Name: name, Extends: cfg.Extends}

	if cfg.Extends != "" {
		base, ok := Get(cfg.Extends)
		if !ok {
			return nil, fmt.Errorf("extends unknown toolchain %q", cfg.Extends)
		}
		tc.Binary = base.Binary
		tc.Flags = base.Flags
		tc.Suffix = base.Suffix
		tc.Env = base.Env
	}

	if cfg.Binary != "" {
		tc.Binary = cfg.Binary
	}
	if cfg.Flags != nil {
		tc.Flags = slices.Clone(cfg.Flags)
	}
	if cfg.Suffix != "" {
		tc.Suffix = cfg.Suffix
	}
	if len(cfg.Env) > 0 {
		env := maps.Clone(tc.Env)
		if env == nil {
			env = make(map[string]string, len(cfg.Env))
		}
		maps.Copy(env, cfg.Env)
		tc.Env = env
	}

	if tc.Binary == "" {
		return nil, fmt.Errorf("binary is required when not extending a built-in toolchain")
	}
	return tc, nil
}
