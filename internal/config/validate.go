package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for values that would prevent a run from
// starting. Validation failures are fatal and non-retryable.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.BaseDir) == "" {
		problems = append(problems, "paths.base_dir must be set")
	}
	if c.Renderer.Binary == "" {
		problems = append(problems, "renderer.binary must be set")
	}
	if c.Renderer.TimeoutSeconds <= 0 {
		problems = append(problems, "renderer.timeout_seconds must be positive")
	}
	if c.Collapse.MaxSizeMiB < 0 {
		problems = append(problems, "collapse.max_size_mib must not be negative")
	}
	if c.Protection.OutputDir == "" {
		problems = append(problems, "protection.output_dir must be set")
	}
	if c.Protection.CredentialFile == "" {
		problems = append(problems, "protection.credential_file must be set")
	}
	if c.Protection.CredentialLength < 8 {
		problems = append(problems, "protection.credential_length must be at least 8")
	}
	if c.Protection.Workers < 0 {
		problems = append(problems, "protection.workers must not be negative")
	}
	if !strings.HasPrefix(c.Protection.TempSuffix, ".") {
		problems = append(problems, "protection.temp_suffix must start with a dot")
	}
	if c.Workflow.WatchPollSeconds <= 0 {
		problems = append(problems, "workflow.watch_poll_seconds must be positive")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported (console or json)", c.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
