package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"presswork/internal/convert"
	"presswork/internal/logging"
	"presswork/internal/queue"
	"presswork/internal/reconcile"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll intake continuously, converting and reconciling each pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner := convert.NewRunner(cfg, logger)
			reconciler := reconcile.New(queue.NewLayout(cfg.Paths.BaseDir), logger)
			interval := time.Duration(cfg.Workflow.WatchPollSeconds) * time.Second
			watchLogger := logging.WithComponent(logger, "watch")
			watchLogger.Info("watching intake", logging.Duration("interval", interval))

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				started := time.Now()
				summary, err := runner.Run(runCtx)
				if err != nil {
					return err
				}
				if summary.Status != convert.StatusNothingToDo {
					ctx.recordConvert(runCtx, summary, started, time.Now())
				}

				reconcileStarted := time.Now()
				result, err := reconciler.Reconcile()
				if err != nil {
					watchLogger.Warn("reconciliation pass failed", logging.Error(err))
				} else if result.Moves() > 0 {
					ctx.recordReconcile(runCtx, result, reconcileStarted, time.Now())
				}

				select {
				case <-runCtx.Done():
					watchLogger.Info("watch stopped")
					return nil
				case <-ticker.C:
				}
			}
		},
	}
}
