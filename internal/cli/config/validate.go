package config

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Models < 0 {
		return fmt.Errorf("models must not be negative, got %d", c.Models)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	if !slices.Contains(outputFormats, c.Output) {
		return fmt.Errorf("unknown output format %q (want one of %s)", c.Output, strings.Join(outputFormats, ", "))
	}
	if !slices.Contains(colorModes, c.Color) {
		return fmt.Errorf("unknown color mode %q (want one of %s)", c.Color, strings.Join(colorModes, ", "))
	}
	return nil
}
