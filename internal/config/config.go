package config

import (
	"os"

	"github.com/emberjson/runtests/internal/errors"
	"github.com/emberjson/runtests/internal/schema"
)

// LoadAndValidate reads a config file, checks it against the embedded schema,
// applies defaults, validates, and returns warnings for unknown fields.
func LoadAndValidate(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Configf("failed to read config file: %v", err)
	}

	if err := schema.ValidateConfig(data); err != nil {
		return nil, nil, errors.Configf("%s: %v", path, err)
	}

	cfg, warnings, err := LoadWithWarnings(data)
	if err != nil {
		return nil, nil, errors.Configf("%s: %v", path, err)
	}

	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, warnings, errors.Configf("%s: %v", path, err)
	}

	return cfg, warnings, nil
}
