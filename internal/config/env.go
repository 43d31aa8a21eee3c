package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverrides captures the environment variables recognized at the process
// boundary. Components never consult the environment directly.
type envOverrides struct {
	BaseDir   string `env:"PRESSWORK_BASE_DIR"`
	LogDir    string `env:"PRESSWORK_LOG_DIR"`
	LogLevel  string `env:"PRESSWORK_LOG_LEVEL"`
	LogFormat string `env:"PRESSWORK_LOG_FORMAT"`
}

func applyEnvOverrides(cfg *Config) error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse environment overrides: %w", err)
	}
	if v := strings.TrimSpace(overrides.BaseDir); v != "" {
		cfg.Paths.BaseDir = v
	}
	if v := strings.TrimSpace(overrides.LogDir); v != "" {
		cfg.Paths.LogDir = v
	}
	if v := strings.TrimSpace(overrides.LogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(overrides.LogFormat); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}
