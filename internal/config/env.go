package config

import "fmt"

// Environment variables that override the configuration file.
const (
	EnvRoot      = "RUNTESTS_ROOT"
	EnvToolchain = "RUNTESTS_TOOLCHAIN"
	EnvParallel  = "RUNTESTS_PARALLEL"
)

// ApplyEnv overrides cfg from the environment. Invalid values are ignored
// and reported as warnings.
func ApplyEnv(cfg *Config, getenv func(string) string) []string {
	var warnings []string

	if v := getenv(EnvRoot); v != "" {
		cfg.Root = v
	}
	if v := getenv(EnvToolchain); v != "" {
		cfg.Toolchain = v
	}
	if v := getenv(EnvParallel); v != "" {
		n, err := ParseParallel(v)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("invalid %s value: %v, using %d", EnvParallel, err, cfg.Parallel))
		} else {
			cfg.Parallel = n
		}
	}

	return warnings
}
