package protect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Manifest records the credential and the run metadata. It is written once,
// before any item is processed, and never mutated afterward, so a crash
// mid-batch still leaves the credential recoverable.
type Manifest struct {
	Generated  time.Time
	InputDir   string
	OutputDir  string
	TotalItems int
	Credential string
}

// WriteManifest persists the manifest as plain text with stable field names.
func WriteManifest(path string, m Manifest) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create manifest directory: %w", err)
		}
	}
	lines := []string{
		fmt.Sprintf("Generated: %s", m.Generated.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("Input Directory: %s", m.InputDir),
		fmt.Sprintf("Output Directory: %s", m.OutputDir),
		fmt.Sprintf("Total items at generation time: %d", m.TotalItems),
		fmt.Sprintf("Credential: %s", m.Credential),
		"",
		"Keep this file secure.",
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
