package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays values from environment variables named in the Config
// struct tags. Unset variables keep the current values.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}
}
