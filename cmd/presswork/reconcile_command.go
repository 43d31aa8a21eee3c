package main

import (
	"time"

	"github.com/spf13/cobra"

	"presswork/internal/queue"
	"presswork/internal/reconcile"
)

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Converge stranded jobs whose output already exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			reconciler := reconcile.New(queue.NewLayout(cfg.Paths.BaseDir), logger)
			started := time.Now()
			result, err := reconciler.Reconcile()
			if err != nil {
				return err
			}
			ctx.recordReconcile(cmd.Context(), result, started, time.Now())

			writeSummary(cmd.OutOrStdout(), "Reconciliation summary", []summaryRow{
				{"moved_from_inflight", itoa(result.MovedFromInFlight)},
				{"moved_from_intake", itoa(result.MovedFromIntake)},
			})
			return nil
		},
	}
}
