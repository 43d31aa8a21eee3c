package queue

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"presswork/internal/fileutil"
	"presswork/internal/logging"
)

// Claim is the handle granted to the single worker holding a job in-flight.
type Claim struct {
	// Name is the job's file name, Stem its identity within the batch.
	Name string
	Stem string
	// Path is the job's in-flight location.
	Path string
}

// Queue drives job transitions over one Layout.
type Queue struct {
	layout Layout
	logger *slog.Logger
}

// New constructs a Queue. A nil logger is replaced with a no-op logger.
func New(layout Layout, logger *slog.Logger) *Queue {
	return &Queue{layout: layout, logger: logging.WithComponent(logger, "queue")}
}

// Layout returns the directory layout the queue operates on.
func (q *Queue) Layout() Layout {
	return q.layout
}

// Acquire attempts to claim the intake entry at src by atomically renaming it
// into in-flight under its bare name. It returns (nil, false) when another
// worker won the race or the move failed transiently; contention is never an
// error. This is the sole admission-control mechanism.
func (q *Queue) Acquire(src string) (*Claim, bool) {
	name := filepath.Base(src)
	dst := filepath.Join(q.layout.InFlight, name)
	if !claimMove(src, dst) {
		q.logger.Debug("claim not acquired", logging.String(logging.FieldJob, Stem(name)))
		return nil, false
	}
	return &Claim{Name: name, Stem: Stem(name), Path: dst}, true
}

// Finalize moves a claimed job into archived. Archived is append-only and
// first-writer-wins: when an entry of the same name already exists the
// in-flight copy is deleted instead of overwritten.
func (q *Queue) Finalize(claim *Claim) error {
	return q.Archive(claim.Path)
}

// Archive applies the collision-safe move-to-archived rule to any job path.
// The source is only ever deleted once the archived copy is confirmed
// present; as an absolute last resort a stuck in-flight copy is removed to
// avoid wedging the batch.
func (q *Queue) Archive(src string) error {
	dst := filepath.Join(q.layout.Archived, filepath.Base(src))
	if exists(dst) {
		if err := os.Remove(src); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove duplicate of archived %s: %w", filepath.Base(src), err)
		}
		return nil
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		// Source vanished concurrently; another worker archived it.
		return nil
	}
	if copyErr := fileutil.CopyFile(src, dst); copyErr == nil {
		_ = os.Remove(src)
		return nil
	}
	q.logger.Warn("archive fallbacks exhausted, dropping in-flight copy",
		logging.String(logging.FieldJob, Stem(src)), logging.Error(err))
	if removeErr := os.Remove(src); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
		return fmt.Errorf("archive %s: %w", filepath.Base(src), err)
	}
	return nil
}

// Requeue returns a failed job from in-flight to intake so a later run
// retries it. If intake already holds an entry with the same name the
// requeued copy gets a retry suffix; work is never silently dropped. When
// every fallback fails the job is left in-flight for manual intervention and
// an error is returned.
func (q *Queue) Requeue(claim *Claim) error {
	if !exists(claim.Path) {
		return nil
	}
	ext := filepath.Ext(claim.Name)
	dst := filepath.Join(q.layout.Intake, claim.Name)
	if exists(dst) {
		dst = filepath.Join(q.layout.Intake, claim.Stem+RetrySuffix+ext)
	}

	if err := moveOrCopy(claim.Path, dst); err == nil {
		return nil
	}
	// Retry against the original name in case the duplicate vanished.
	fallback := filepath.Join(q.layout.Intake, claim.Name)
	if err := moveOrCopy(claim.Path, fallback); err != nil {
		q.logger.Error("requeue failed, job left in-flight",
			logging.String(logging.FieldJob, claim.Stem), logging.Error(err))
		return fmt.Errorf("requeue %s: %w", claim.Name, err)
	}
	return nil
}

// ListIntake enumerates claimable intake entries: recognized extensions
// matched case-insensitively, deduplicated by resolved path, in
// deterministic order.
func (q *Queue) ListIntake() ([]string, error) {
	entries, err := os.ReadDir(q.layout.Intake)
	if err != nil {
		return nil, fmt.Errorf("list intake: %w", err)
	}

	seen := make(map[string]struct{}, len(entries))
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsIntakeName(entry.Name()) {
			continue
		}
		path := filepath.Join(q.layout.Intake, entry.Name())
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			resolved = path
		}
		if _, ok := seen[resolved]; ok {
			continue
		}
		seen[resolved] = struct{}{}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// OutputStems returns the set of job identities whose output already exists
// in the output store.
func (q *Queue) OutputStems() (map[string]struct{}, error) {
	entries, err := os.ReadDir(q.layout.OutputStore)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("list output store: %w", err)
	}
	stems := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != OutputExt {
			continue
		}
		stems[Stem(entry.Name())] = struct{}{}
	}
	return stems, nil
}
