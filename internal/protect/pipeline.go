package protect

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"presswork/internal/config"
	"presswork/internal/fileutil"
	"presswork/internal/logging"
	"presswork/internal/services"
	"presswork/internal/services/pdfenc"
)

// ErrBusy indicates another protection run holds the output directory lock.
var ErrBusy = errors.New("protection run already in progress")

// lockFileName guards a whole run; per-item work stays lock-free.
const lockFileName = ".presswork.lock"

// Protector is the external protection primitive.
type Protector interface {
	IsProtected(path string) (bool, error)
	Protect(src, dst, credential string) (variant string, err error)
}

// Result reports per-item outcomes for one run.
type Result struct {
	Total     int `json:"total"`
	Encrypted int `json:"encrypted"`
	Copied    int `json:"copied"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type action int

const (
	actionEncrypted action = iota
	actionCopied
	actionSkipped
	actionFailed
)

type outcome struct {
	name    string
	action  action
	variant string
	err     error
}

// Pipeline fans a batch of documents out across a bounded worker pool.
type Pipeline struct {
	cfg       config.Protection
	protector Protector
	logger    *slog.Logger
}

// New constructs the pipeline with the default protection primitive.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	return NewWithProtector(cfg.Protection, pdfenc.NewService(logger), logger)
}

// NewWithProtector allows injecting the protection primitive (used in tests).
func NewWithProtector(cfg config.Protection, protector Protector, logger *slog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, protector: protector, logger: logging.WithComponent(logger, "protect")}
}

// Run protects every document under inputDir into outputDir. An empty
// outputDir selects the configured subdirectory of inputDir. Failed items
// are recorded and never abort the batch; there is no mid-batch
// cancellation.
func (p *Pipeline) Run(ctx context.Context, inputDir, outputDir string) (Result, error) {
	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return Result{}, services.Wrap(services.ErrConfiguration, "protect", "validate input", fmt.Sprintf("Input directory not found: %s", inputDir), err)
	}
	if outputDir == "" {
		outputDir = filepath.Join(inputDir, p.cfg.OutputDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "protect", "ensure output dir", "Failed to create output directory", err)
	}

	// One credential per output set: concurrent runs would race to generate
	// two secrets for the same destination, so whole runs are serialized.
	lock := flock.New(filepath.Join(outputDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "protect", "acquire run lock", "Failed to acquire output directory lock", err)
	}
	if !locked {
		return Result{}, ErrBusy
	}
	defer func() {
		_ = lock.Unlock()
	}()

	credential, err := GenerateCredential(p.cfg.CredentialLength, p.cfg.Symbols)
	if err != nil {
		return Result{}, err
	}

	files, err := p.discover(inputDir, outputDir)
	if err != nil {
		return Result{}, err
	}

	manifestPath := filepath.Join(outputDir, p.cfg.CredentialFile)
	manifest := Manifest{
		Generated:  time.Now(),
		InputDir:   inputDir,
		OutputDir:  outputDir,
		TotalItems: len(files),
		Credential: credential,
	}
	if err := WriteManifest(manifestPath, manifest); err != nil {
		return Result{}, err
	}

	result := Result{Total: len(files)}
	if len(files) == 0 {
		p.logger.Info("no documents to protect", logging.String("input", inputDir))
		return result, nil
	}

	workers := p.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}
	p.logger.Info("protection run started",
		logging.Int("total", len(files)),
		logging.Int("workers", workers),
		logging.String("output", outputDir))

	outcomes := make(chan outcome, len(files))
	var group errgroup.Group
	group.SetLimit(workers)
	for _, src := range files {
		group.Go(func() error {
			outcomes <- p.processOne(src, filepath.Join(outputDir, filepath.Base(src)), credential)
			return nil
		})
	}
	_ = group.Wait()
	close(outcomes)

	// Outcomes are tallied as workers finish; no ordering between them.
	for o := range outcomes {
		logger := p.logger.With(logging.String("name", o.name))
		switch o.action {
		case actionEncrypted:
			result.Encrypted++
			logger.Info("encrypted", logging.String("variant", o.variant))
		case actionCopied:
			result.Copied++
			logger.Info("copied already-protected document")
		case actionSkipped:
			result.Skipped++
			logger.Info("skipped, destination exists")
		case actionFailed:
			result.Failed++
			logger.Warn("protection failed", logging.Error(o.err))
		}
	}

	p.logger.Info("protection run finished",
		logging.Int("encrypted", result.Encrypted),
		logging.Int("copied", result.Copied),
		logging.Int("skipped", result.Skipped),
		logging.Int("failed", result.Failed))
	return result, nil
}

// processOne classifies and handles a single document. Each worker writes
// only to its own destination path, so no mutual exclusion is needed beyond
// the temp-file promotion rename.
func (p *Pipeline) processOne(src, dst, credential string) (o outcome) {
	o.name = filepath.Base(src)
	defer func() {
		if rec := recover(); rec != nil {
			o.action = actionFailed
			o.err = fmt.Errorf("protection panic: %v", rec)
		}
	}()

	if _, err := os.Stat(dst); err == nil {
		o.action = actionSkipped
		return o
	}

	protected, err := p.protector.IsProtected(src)
	if err != nil {
		o.action = actionFailed
		o.err = err
		return o
	}

	tempPath := dst + p.cfg.TempSuffix
	if protected {
		if err := fileutil.CopyFile(src, tempPath); err != nil {
			o.action = actionFailed
			o.err = err
			return o
		}
	} else {
		variant, err := p.protector.Protect(src, tempPath, credential)
		if err != nil {
			_ = os.Remove(tempPath)
			o.action = actionFailed
			o.err = err
			return o
		}
		o.variant = variant
	}

	if err := os.Rename(tempPath, dst); err != nil {
		_ = os.Remove(tempPath)
		o.action = actionFailed
		o.err = err
		return o
	}
	if o.variant != "" {
		o.action = actionEncrypted
	} else {
		o.action = actionCopied
	}
	return o
}

// discover finds input documents, optionally recursively. When the top level
// is empty and recursion is off, one recursive retry runs automatically. The
// output subtree and the credential file are never treated as inputs.
func (p *Pipeline) discover(inputDir, outputDir string) ([]string, error) {
	files, err := p.scan(inputDir, outputDir, p.cfg.Recursive)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 && !p.cfg.Recursive {
		if files, err = p.scan(inputDir, outputDir, true); err != nil {
			return nil, err
		}
		if len(files) > 0 {
			p.logger.Info("top level empty, using recursive scan", logging.Int("found", len(files)))
		}
	}
	sort.Strings(files)
	return files, nil
}

func (p *Pipeline) scan(inputDir, outputDir string, recursive bool) ([]string, error) {
	var files []string
	if !recursive {
		entries, err := os.ReadDir(inputDir)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", inputDir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !isDocumentName(entry.Name()) {
				continue
			}
			files = append(files, filepath.Join(inputDir, entry.Name()))
		}
		return files, nil
	}

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == outputDir {
				return filepath.SkipDir
			}
			return nil
		}
		if isDocumentName(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", inputDir, err)
	}
	return files, nil
}

func isDocumentName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
