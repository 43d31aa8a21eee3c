package queue

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Fixed directory convention under the configured base directory.
const (
	DirIntake      = "intake"
	DirInFlight    = "in-flight"
	DirArchived    = "archived"
	DirOutputStore = "output-store"
)

// OutputExt is the extension of rendered artifacts in the output store.
const OutputExt = ".pdf"

// RetrySuffix is appended to a requeued job's stem when its original intake
// name is occupied by a newer duplicate.
const RetrySuffix = "__retry"

// intakeExts lists the recognized input extensions, matched case-insensitively.
var intakeExts = []string{".html", ".htm"}

// Layout resolves the queue directories for one base directory.
type Layout struct {
	Intake      string
	InFlight    string
	Archived    string
	OutputStore string
}

// NewLayout derives the four queue directories from a base directory.
func NewLayout(baseDir string) Layout {
	return Layout{
		Intake:      filepath.Join(baseDir, DirIntake),
		InFlight:    filepath.Join(baseDir, DirInFlight),
		Archived:    filepath.Join(baseDir, DirArchived),
		OutputStore: filepath.Join(baseDir, DirOutputStore),
	}
}

// Ensure creates the queue directories on first run.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.Intake, l.InFlight, l.Archived, l.OutputStore} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// OutputPath returns the output store location for the given job stem.
func (l Layout) OutputPath(stem string) string {
	return filepath.Join(l.OutputStore, stem+OutputExt)
}

// Stem returns the job identity for a path: its base name without extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsIntakeName reports whether the file name carries a recognized input
// extension, matched case-insensitively.
func IsIntakeName(name string) bool {
	ext := filepath.Ext(name)
	for _, candidate := range intakeExts {
		if strings.EqualFold(ext, candidate) {
			return true
		}
	}
	return false
}
