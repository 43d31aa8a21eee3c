package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"presswork/internal/config"
	"presswork/internal/convert"
	"presswork/internal/history"
	"presswork/internal/logging"
	"presswork/internal/protect"
	"presswork/internal/reconcile"
)

// commandContext carries lazily initialized shared state across subcommands.
type commandContext struct {
	configFlag  *string
	baseDirFlag *string

	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	runID   string
}

func newCommandContext(configFlag, baseDirFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, baseDirFlag: baseDirFlag}
}

// ensureConfig loads configuration once per invocation. Configuration
// failures are fatal and surface exit code 2.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, path, _, err := config.Load(strings.TrimSpace(*c.configFlag))
	if err != nil {
		return nil, &exitError{code: 2, err: err}
	}
	if base := strings.TrimSpace(*c.baseDirFlag); base != "" {
		if cfg.Paths.BaseDir, err = config.ExpandPath(base); err != nil {
			return nil, &exitError{code: 2, err: err}
		}
	}
	c.cfg = cfg
	c.cfgPath = path
	return cfg, nil
}

// ensureLogger builds the run-scoped logger, tagged with a fresh run_id.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	outputs := []string{"stdout"}
	errorOutputs := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		if err := cfg.EnsureLogDir(); err != nil {
			return nil, &exitError{code: 2, err: fmt.Errorf("ensure log directory: %w", err)}
		}
		logPath := filepath.Join(cfg.Paths.LogDir, "presswork.log")
		outputs = append(outputs, logPath)
		errorOutputs = append(errorOutputs, logPath)
	}

	logger, err := logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      outputs,
		ErrorOutputPaths: errorOutputs,
	})
	if err != nil {
		return nil, &exitError{code: 2, err: err}
	}

	c.runID = uuid.NewString()
	c.logger = logger.With(logging.String(logging.FieldRunID, c.runID))
	return c.logger, nil
}

// recordConvert persists a batch summary on a best-effort basis.
func (c *commandContext) recordConvert(ctx context.Context, summary convert.Summary, started, finished time.Time) {
	c.withHistory(func(store *history.Store) error {
		return store.RecordConvert(ctx, c.runID, summary, started, finished)
	})
}

func (c *commandContext) recordReconcile(ctx context.Context, result reconcile.Result, started, finished time.Time) {
	c.withHistory(func(store *history.Store) error {
		return store.RecordReconcile(ctx, c.runID, result, started, finished)
	})
}

func (c *commandContext) recordProtect(ctx context.Context, result protect.Result, started, finished time.Time) {
	c.withHistory(func(store *history.Store) error {
		return store.RecordProtect(ctx, c.runID, result, started, finished)
	})
}

func (c *commandContext) withHistory(fn func(*history.Store) error) {
	if c.cfg == nil || !c.cfg.History.Enabled {
		return
	}
	store, err := history.Open(c.cfg.History.Path)
	if err != nil {
		c.warn("history unavailable", err)
		return
	}
	defer store.Close()
	if err := fn(store); err != nil {
		c.warn("history write failed", err)
	}
}

func (c *commandContext) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, logging.Error(err))
	}
}
