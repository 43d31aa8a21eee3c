// Package config loads, validates, and normalizes the presswork
// configuration. Configuration comes from a TOML file with environment
// overrides applied once at the process boundary; components receive an
// explicit *Config and never read the environment themselves.
package config
