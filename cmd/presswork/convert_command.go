package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"presswork/internal/convert"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "convert",
		Short: "Run one batch pass: claim intake documents, render, archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runner := convert.NewRunner(cfg, logger)
			started := time.Now()
			summary, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			ctx.recordConvert(cmd.Context(), summary, started, time.Now())

			writeSummary(cmd.OutOrStdout(), "Batch summary", []summaryRow{
				{"status", string(summary.Status)},
				{"acquired", itoa(summary.Acquired)},
				{"successes", itoa(summary.Successes)},
				{"failures", itoa(summary.Failures)},
				{"skipped_existing", itoa(summary.SkippedExisting)},
			})

			if summary.Status == convert.StatusPartial {
				return &exitError{code: 3, err: fmt.Errorf("%d job(s) failed and were requeued", summary.Failures)}
			}
			return nil
		},
	}
}
