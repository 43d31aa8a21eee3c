package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"presswork/internal/config"
	"presswork/internal/logging"
	"presswork/internal/outline"
	"presswork/internal/queue"
	"presswork/internal/services/weasyprint"
)

// Renderer is the external rendering collaborator: one opaque conversion per
// job. Failures are typed and retried only through requeueing.
type Renderer interface {
	Render(ctx context.Context, inputPath, outputPath string) error
}

// Collapser post-processes a rendered artifact's outline.
type Collapser interface {
	CollapseFile(path string) error
}

// Runner executes one batch pass over the intake directory.
type Runner struct {
	queue     *queue.Queue
	renderer  Renderer
	collapser Collapser
	logger    *slog.Logger
}

// NewRunner constructs a Runner with the default collaborators.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	layout := queue.NewLayout(cfg.Paths.BaseDir)
	return NewRunnerWithDependencies(layout, weasyprint.NewClient(cfg, logger), outline.NewCollapser(cfg, logger), logger)
}

// NewRunnerWithDependencies allows injecting collaborators (used in tests).
func NewRunnerWithDependencies(layout queue.Layout, renderer Renderer, collapser Collapser, logger *slog.Logger) *Runner {
	return &Runner{
		queue:     queue.New(layout, logger),
		renderer:  renderer,
		collapser: collapser,
		logger:    logging.WithComponent(logger, "convert"),
	}
}

// Run drives acquire → render-or-skip → finalize|requeue for every intake
// entry. It is single-threaded within one process; safety across concurrent
// worker processes comes entirely from the queue's atomic claim.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	layout := r.queue.Layout()
	if err := layout.Ensure(); err != nil {
		return Summary{}, err
	}

	files, err := r.queue.ListIntake()
	if err != nil {
		return Summary{}, err
	}
	if len(files) == 0 {
		r.logger.Info("no intake entries found", logging.String("intake", layout.Intake))
		return Summary{Status: StatusNothingToDo}, nil
	}

	var summary Summary
	for _, src := range files {
		if ctx.Err() != nil {
			// Remaining entries stay in intake; a later run picks them up.
			break
		}
		claim, ok := r.queue.Acquire(src)
		if !ok {
			continue
		}
		summary.Acquired++
		r.processClaim(ctx, claim, &summary)
	}

	summary = summary.finish()
	r.logger.Info("batch finished",
		logging.String("status", string(summary.Status)),
		logging.Int("acquired", summary.Acquired),
		logging.Int("successes", summary.Successes),
		logging.Int("failures", summary.Failures),
		logging.Int("skipped_existing", summary.SkippedExisting))
	return summary, nil
}

func (r *Runner) processClaim(ctx context.Context, claim *queue.Claim, summary *Summary) {
	logger := r.logger.With(logging.String(logging.FieldJob, claim.Stem))
	outputPath := r.queue.Layout().OutputPath(claim.Stem)

	if _, err := os.Stat(outputPath); err == nil {
		// A previous run already produced this output; archive without
		// rendering so reprocessing a drained intake stays cheap.
		if err := r.queue.Finalize(claim); err != nil {
			logger.Warn("finalize after existing output failed", logging.Error(err))
		}
		summary.Successes++
		summary.SkippedExisting++
		logger.Info("output already present, archived without rendering")
		return
	}

	if err := r.renderClaim(ctx, claim, outputPath); err != nil {
		summary.Failures++
		logger.Warn("rendering failed, requeueing", logging.Error(err))
		if requeueErr := r.queue.Requeue(claim); requeueErr != nil {
			logger.Error("requeue failed", logging.Error(requeueErr))
		}
		return
	}

	if r.collapser != nil {
		if err := r.collapser.CollapseFile(outputPath); err != nil {
			logger.Warn("outline collapse skipped", logging.Error(err))
		}
	}
	if err := r.queue.Finalize(claim); err != nil {
		logger.Warn("finalize failed, job left for reconciliation", logging.Error(err))
	}
	summary.Successes++
	logger.Info("job completed", logging.String("output", outputPath))
}

// renderClaim isolates the render call so an unexpected panic in the
// rendering path fails only this item.
func (r *Runner) renderClaim(ctx context.Context, claim *queue.Claim, outputPath string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("render panic: %v", rec)
		}
	}()
	return r.renderer.Render(ctx, claim.Path, outputPath)
}
