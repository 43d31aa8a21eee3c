package logging

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewConsoleFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := New(Options{Level: "info", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	scoped := WithComponent(logger, "queue")
	scoped.Info("job claimed", String(FieldJob, "report"), Int("attempt", 1))
	scoped.Debug("suppressed below info")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1:\n%s", len(lines), text)
	}
	line := lines[0]
	if !strings.Contains(line, "INFO queue: job claimed") {
		t.Errorf("line missing level/component prefix: %q", line)
	}
	if !strings.Contains(line, "job=report") || !strings.Contains(line, "attempt=1") {
		t.Errorf("line missing attributes: %q", line)
	}
}

func TestNewJSONFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := New(Options{Level: "debug", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	logger.Debug("starting", String(FieldComponent, "convert"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, data)
	}
	if record["level"] != "debug" || record["msg"] != "starting" {
		t.Errorf("record = %v", record)
	}
	if record[FieldComponent] != "convert" {
		t.Errorf("component missing: %v", record)
	}
	if _, ok := record["ts"].(string); !ok {
		t.Errorf("timestamp missing: %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewCreatesLogDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "app.log")
	logger, err := New(Options{Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Info("hello")

	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	logger, err := New(Options{Level: "warn", Format: "console", OutputPaths: []string{filepath.Join(t.TempDir(), "x.log")}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if logger.Enabled(context.Background(), parseLevel("info")) {
		t.Error("info should be suppressed at warn level")
	}
	if !logger.Enabled(context.Background(), parseLevel("error")) {
		t.Error("error should pass at warn level")
	}
}

func TestWithComponentNilLogger(t *testing.T) {
	logger := WithComponent(nil, "anything")
	// Must not panic and must stay silent.
	logger.Error("discarded")
}
