package config

const (
	defaultBaseDir                = "~/.local/share/presswork"
	defaultLogDir                 = "~/.local/share/presswork/logs"
	defaultRendererBinary         = "weasyprint"
	defaultRendererTimeoutSeconds = 300
	defaultCollapseMaxSizeMiB     = 5
	defaultProtectionOutputDir    = "encrypted"
	defaultCredentialFile         = "password.txt"
	defaultCredentialLength       = 20
	defaultTempSuffix             = ".tmp"
	defaultWatchPollSeconds       = 5
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			BaseDir: defaultBaseDir,
			LogDir:  defaultLogDir,
		},
		Renderer: Renderer{
			Binary:         defaultRendererBinary,
			TimeoutSeconds: defaultRendererTimeoutSeconds,
		},
		Collapse: Collapse{
			Enabled:    true,
			MaxSizeMiB: defaultCollapseMaxSizeMiB,
		},
		Protection: Protection{
			OutputDir:        defaultProtectionOutputDir,
			CredentialFile:   defaultCredentialFile,
			CredentialLength: defaultCredentialLength,
			Symbols:          true,
			TempSuffix:       defaultTempSuffix,
		},
		History: History{
			Enabled: true,
		},
		Workflow: Workflow{
			WatchPollSeconds: defaultWatchPollSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
