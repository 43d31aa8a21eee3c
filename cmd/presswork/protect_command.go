package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"presswork/internal/protect"
	"presswork/internal/queue"
	"presswork/internal/services/pdfenc"
)

func newProtectCommand(ctx *commandContext) *cobra.Command {
	var inputDir string
	var outputDir string
	var workers int
	var recursive bool

	cmd := &cobra.Command{
		Use:   "protect",
		Short: "Produce a password-protected copy of the output set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			protection := cfg.Protection
			if workers > 0 {
				protection.Workers = workers
			}
			if recursive {
				protection.Recursive = true
			}
			if inputDir == "" {
				inputDir = queue.NewLayout(cfg.Paths.BaseDir).OutputStore
			}

			pipeline := protect.NewWithProtector(protection, pdfenc.NewService(logger), logger)
			started := time.Now()
			result, err := pipeline.Run(cmd.Context(), inputDir, outputDir)
			if err != nil {
				if errors.Is(err, protect.ErrBusy) {
					return &exitError{code: 2, err: err}
				}
				return err
			}
			ctx.recordProtect(cmd.Context(), result, started, time.Now())

			writeSummary(cmd.OutOrStdout(), "Protection summary", []summaryRow{
				{"total", itoa(result.Total)},
				{"encrypted", itoa(result.Encrypted)},
				{"copied", itoa(result.Copied)},
				{"skipped", itoa(result.Skipped)},
				{"failed", itoa(result.Failed)},
			})

			if result.Failed > 0 {
				return &exitError{code: 3, err: errors.New("some documents could not be protected")}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "dir", "", "Input directory (default: the output store)")
	cmd.Flags().StringVar(&outputDir, "out-dir", "", "Output directory (default: <dir>/encrypted)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (default: configuration, then CPU count)")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "Scan the input directory recursively")

	return cmd
}
