package weasyprint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"presswork/internal/config"
	"presswork/internal/logging"
	"presswork/internal/services"
)

// renderTempSuffix marks in-progress output so partially written artifacts
// never carry the output extension.
const renderTempSuffix = ".tmp"

// stderrTailLimit bounds how much engine stderr is attached to errors.
const stderrTailLimit = 2048

// Client shells out to the weasyprint binary.
type Client struct {
	binary    string
	timeout   time.Duration
	extraArgs []string
	logger    *slog.Logger
}

// NewClient builds a renderer client from configuration.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		binary:    cfg.Renderer.Binary,
		timeout:   time.Duration(cfg.Renderer.TimeoutSeconds) * time.Second,
		extraArgs: append([]string(nil), cfg.Renderer.ExtraArgs...),
		logger:    logging.WithComponent(logger, "renderer"),
	}
}

// Render converts inputPath into outputPath. The engine writes to stdout and
// the client promotes a temporary sibling file into place, so readers never
// observe a partial artifact.
func (c *Client) Render(ctx context.Context, inputPath, outputPath string) error {
	if _, err := os.Stat(inputPath); err != nil {
		return services.Wrap(services.ErrValidation, "renderer", "validate input", "Input file not found", err)
	}
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(services.ErrTransient, "renderer", "ensure output dir", "Failed to create output directory", err)
		}
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	tempPath := outputPath + renderTempSuffix
	out, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return services.Wrap(services.ErrTransient, "renderer", "create temp output", "Failed to create temporary output file", err)
	}

	args := append(append([]string(nil), c.extraArgs...), inputPath, "-")
	cmd := exec.CommandContext(runCtx, c.binary, args...)
	cmd.Stdout = out
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	started := time.Now()
	runErr := cmd.Run()
	closeErr := out.Close()

	if runErr != nil {
		_ = os.Remove(tempPath)
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrExternalTool, "renderer", "render",
				fmt.Sprintf("Rendering timed out after %s", c.timeout), runErr)
		}
		return services.Wrap(services.ErrExternalTool, "renderer", "render", stderrTail(&stderr), runErr)
	}
	if closeErr != nil {
		_ = os.Remove(tempPath)
		return services.Wrap(services.ErrTransient, "renderer", "flush output", "Failed to flush rendered output", closeErr)
	}
	if info, err := os.Stat(tempPath); err != nil || info.Size() == 0 {
		_ = os.Remove(tempPath)
		return services.Wrap(services.ErrExternalTool, "renderer", "render", "Engine produced no output", nil)
	}
	if err := os.Rename(tempPath, outputPath); err != nil {
		_ = os.Remove(tempPath)
		return services.Wrap(services.ErrTransient, "renderer", "promote output", "Failed to move rendered output into place", err)
	}

	c.logger.Info("rendered document",
		logging.String("input", filepath.Base(inputPath)),
		logging.String("output", filepath.Base(outputPath)),
		logging.Duration("elapsed", time.Since(started)))
	return nil
}

func stderrTail(buf *bytes.Buffer) string {
	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "Rendering engine reported failure"
	}
	if len(text) > stderrTailLimit {
		text = text[len(text)-stderrTailLimit:]
	}
	return text
}
