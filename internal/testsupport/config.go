// Package testsupport provides shared helpers for package tests: temp-rooted
// configurations and queue layouts seeded with files.
package testsupport

import (
	"path/filepath"
	"testing"

	"presswork/internal/config"
	"presswork/internal/queue"
)

// NewConfig produces a config rooted in a unique temp directory per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.BaseDir = filepath.Join(base, "queue")
	cfg.Paths.LogDir = ""
	cfg.History.Path = filepath.Join(base, "history.db")
	cfg.Protection.Workers = 2
	return &cfg
}

// NewLayout creates and ensures a queue layout under a temp directory.
func NewLayout(t testing.TB) queue.Layout {
	t.Helper()

	layout := queue.NewLayout(t.TempDir())
	if err := layout.Ensure(); err != nil {
		t.Fatalf("ensure layout: %v", err)
	}
	return layout
}
