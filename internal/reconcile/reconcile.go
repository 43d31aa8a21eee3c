// Package reconcile repairs queue state after crashes or partial runs. Any
// intake or in-flight entry whose output already exists in the output store
// is converged to archived with the same collision-safe move the orchestrator
// uses. The sweep is idempotent and safe to run concurrently with active
// workers: it only touches jobs whose output is already durably present.
package reconcile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"presswork/internal/logging"
	"presswork/internal/queue"
)

// Result reports how many stranded entries were converged.
type Result struct {
	MovedFromInFlight int `json:"moved_from_inflight"`
	MovedFromIntake   int `json:"moved_from_intake"`
}

// Moves returns the total number of convergence moves.
func (r Result) Moves() int {
	return r.MovedFromInFlight + r.MovedFromIntake
}

// Reconciler sweeps one queue layout.
type Reconciler struct {
	queue  *queue.Queue
	logger *slog.Logger
}

// New constructs a Reconciler for the given layout.
func New(layout queue.Layout, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		queue:  queue.New(layout, logger),
		logger: logging.WithComponent(logger, "reconcile"),
	}
}

// Reconcile converges stranded jobs toward archived. Jobs are matched to
// outputs by stem; running it again with no intervening changes moves
// nothing.
func (r *Reconciler) Reconcile() (Result, error) {
	layout := r.queue.Layout()
	if err := layout.Ensure(); err != nil {
		return Result{}, err
	}

	stems, err := r.queue.OutputStems()
	if err != nil {
		return Result{}, err
	}

	var result Result
	if result.MovedFromInFlight, err = r.sweep(layout.InFlight, stems); err != nil {
		return result, err
	}
	if result.MovedFromIntake, err = r.sweep(layout.Intake, stems); err != nil {
		return result, err
	}

	r.logger.Info("reconciliation finished",
		logging.Int("moved_from_inflight", result.MovedFromInFlight),
		logging.Int("moved_from_intake", result.MovedFromIntake))
	return result, nil
}

func (r *Reconciler) sweep(dir string, stems map[string]struct{}) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !queue.IsIntakeName(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	moved := 0
	for _, name := range names {
		if _, ok := stems[queue.Stem(name)]; !ok {
			continue
		}
		src := filepath.Join(dir, name)
		if err := r.queue.Archive(src); err != nil {
			r.logger.Warn("failed to converge stranded job",
				logging.String(logging.FieldJob, queue.Stem(name)), logging.Error(err))
			continue
		}
		moved++
	}
	return moved, nil
}
