package config

// Default configuration values.
const (
	DefaultRoot      = "test/emberjson"
	DefaultToolchain = "mojo"
	DefaultParallel  = 1
)

// Default returns the configuration used when no runtests.json exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Root == "" {
		cfg.Root = DefaultRoot
	}
	if cfg.Toolchain == "" {
		cfg.Toolchain = DefaultToolchain
	}
	if cfg.Parallel == 0 {
		cfg.Parallel = DefaultParallel
	}
}
