package config

import (
	"fmt"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// minParallel ensures at least one worker.
	minParallel = 1

	// maxParallel caps the worker pool; each worker holds one toolchain subprocess.
	maxParallel = 256
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the semantic rules the schema cannot express.
func Validate(cfg *Config) error {
	if cfg.Parallel < minParallel || cfg.Parallel > maxParallel {
		return &ValidationError{
			Field:   "parallel",
			Message: fmt.Sprintf("must be between %d and %d", minParallel, maxParallel),
		}
	}

	d, err := cfg.TimeoutDuration()
	if err != nil {
		return &ValidationError{Field: "timeout", Message: fmt.Sprintf("invalid duration %q", cfg.Timeout)}
	}
	if d < 0 {
		return &ValidationError{Field: "timeout", Message: "must not be negative"}
	}

	for i, p := range cfg.Exclude {
		if !doublestar.ValidatePattern(p) {
			return &ValidationError{Field: fmt.Sprintf("exclude[%d]", i), Message: fmt.Sprintf("invalid pattern %q", p)}
		}
	}

	for name, tc := range cfg.Toolchains {
		if tc.Extends == "" && tc.Binary == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("toolchains.%s", name),
				Message: `requires "binary" or "extends"`,
			}
		}
	}

	return nil
}

// ParseParallel parses a worker count, enforcing the accepted range.
func ParseParallel(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if n < minParallel || n > maxParallel {
		return 0, fmt.Errorf("%d out of range [%d-%d]", n, minParallel, maxParallel)
	}
	return n, nil
}
