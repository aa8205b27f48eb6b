package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays RESEARCHDT_* variables. Unset variables leave the current
// value untouched.
func parseEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	return nil
}
