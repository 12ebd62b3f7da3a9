// Package config provides configuration loading and validation for runtests.json.
package config

import "time"

// Config represents the complete runtests.json configuration.
type Config struct {
	Schema     string                     `json:"$schema,omitempty"`
	Root       string                     `json:"root,omitempty"`      // Test tree, relative to the project root
	Toolchain  string                     `json:"toolchain,omitempty"` // Toolchain name, or "auto"
	Suffix     string                     `json:"suffix,omitempty"`    // Overrides the toolchain's test-file suffix
	Exclude    []string                   `json:"exclude,omitempty"`   // Doublestar patterns relative to root
	Workdir    string                     `json:"workdir,omitempty"`   // Working directory for toolchain runs
	Parallel   int                        `json:"parallel,omitempty"`  // Worker count; 1 runs sequentially
	Timeout    string                     `json:"timeout,omitempty"`   // Per-run timeout as a Go duration; empty disables
	Report     string                     `json:"report,omitempty"`    // Machine-readable report path (.json, .yaml)
	History    string                     `json:"history,omitempty"`   // SQLite run history path
	Metrics    string                     `json:"metrics,omitempty"`   // Prometheus textfile path
	Toolchains map[string]ToolchainConfig `json:"toolchains,omitempty"`
}

// ToolchainConfig defines a custom toolchain.
type ToolchainConfig struct {
	Extends string            `json:"extends,omitempty"`
	Binary  string            `json:"binary,omitempty"`
	Flags   []string          `json:"flags,omitempty"`
	Suffix  string            `json:"suffix,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// TimeoutDuration returns the parsed per-run timeout; zero means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Timeout)
}
