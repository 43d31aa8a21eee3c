package protect_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"presswork/internal/config"
	"presswork/internal/logging"
	"presswork/internal/protect"
	"presswork/internal/services"
	"presswork/internal/testsupport"
)

// fakeProtector classifies inputs by file name prefix so tests can drive
// every outcome without a real document engine.
type fakeProtector struct{}

func (fakeProtector) IsProtected(path string) (bool, error) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, "unreadable") {
		return false, errors.New("cannot open document")
	}
	return strings.HasPrefix(name, "sealed"), nil
}

func (fakeProtector) Protect(src, dst, credential string) (string, error) {
	name := filepath.Base(src)
	if strings.HasPrefix(name, "stubborn") {
		return "", errors.New("all variants rejected")
	}
	if err := os.WriteFile(dst, []byte("encrypted:"+credential), 0o644); err != nil {
		return "", err
	}
	return "aes-256", nil
}

func protectionConfig() config.Protection {
	cfg := config.Default()
	cfg.Protection.Workers = 2
	return cfg.Protection
}

func newPipeline() *protect.Pipeline {
	return protect.NewWithProtector(protectionConfig(), fakeProtector{}, logging.NewNop())
}

func TestRunClassifiesOutcomes(t *testing.T) {
	input := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(input, "plain-a.pdf"), "doc")
	testsupport.WriteFile(t, filepath.Join(input, "plain-b.pdf"), "doc")
	testsupport.WriteFile(t, filepath.Join(input, "sealed.pdf"), "already protected")
	testsupport.WriteFile(t, filepath.Join(input, "stubborn.pdf"), "doc")
	testsupport.WriteFile(t, filepath.Join(input, "notes.txt"), "not a document")

	output := filepath.Join(input, "encrypted")
	testsupport.WriteFile(t, filepath.Join(output, "plain-b.pdf"), "from a previous run")

	result, err := newPipeline().Run(context.Background(), input, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := protect.Result{Total: 4, Encrypted: 1, Copied: 1, Skipped: 1, Failed: 1}
	if result != want {
		t.Errorf("result = %+v, want %+v", result, want)
	}

	encrypted, err := os.ReadFile(filepath.Join(output, "plain-a.pdf"))
	if err != nil {
		t.Fatalf("read encrypted output: %v", err)
	}
	if !strings.HasPrefix(string(encrypted), "encrypted:") {
		t.Errorf("plain-a.pdf not encrypted: %q", encrypted)
	}
	copied, err := os.ReadFile(filepath.Join(output, "sealed.pdf"))
	if err != nil {
		t.Fatalf("read copied output: %v", err)
	}
	if string(copied) != "already protected" {
		t.Errorf("sealed.pdf should be copied verbatim, got %q", copied)
	}
	skipped, err := os.ReadFile(filepath.Join(output, "plain-b.pdf"))
	if err != nil {
		t.Fatalf("read skipped output: %v", err)
	}
	if string(skipped) != "from a previous run" {
		t.Errorf("existing destination overwritten: %q", skipped)
	}
	if testsupport.Exists(t, filepath.Join(output, "stubborn.pdf")) {
		t.Error("failed item should leave no destination")
	}
	if testsupport.Exists(t, filepath.Join(output, "stubborn.pdf.tmp")) {
		t.Error("failed item should leave no temp file")
	}
}

func TestRunWritesManifestBeforeProcessing(t *testing.T) {
	input := t.TempDir()
	// Every item fails, so manifest content cannot depend on outcomes.
	testsupport.WriteFile(t, filepath.Join(input, "stubborn-1.pdf"), "doc")
	testsupport.WriteFile(t, filepath.Join(input, "stubborn-2.pdf"), "doc")

	result, err := newPipeline().Run(context.Background(), input, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Failed != 2 {
		t.Fatalf("failed = %d, want 2", result.Failed)
	}

	manifestPath := filepath.Join(input, "encrypted", "password.txt")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("manifest should exist even when every item fails: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "Credential: ") {
		t.Errorf("manifest missing credential line:\n%s", text)
	}
	if !strings.Contains(text, "Total items at generation time: 2") {
		t.Errorf("manifest missing item count:\n%s", text)
	}
	info, err := os.Stat(manifestPath)
	if err != nil {
		t.Fatalf("stat manifest: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("manifest mode = %o, want 600", mode)
	}
}

func TestRunWhileLockedReportsBusy(t *testing.T) {
	input := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(input, "doc.pdf"), "doc")
	output := filepath.Join(input, "encrypted")
	if err := os.MkdirAll(output, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	lock := flock.New(filepath.Join(output, ".presswork.lock"))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("pre-acquire lock: locked=%v err=%v", locked, err)
	}
	defer lock.Unlock()

	if _, err := newPipeline().Run(context.Background(), input, ""); !errors.Is(err, protect.ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}
}

func TestRunMissingInputDirectory(t *testing.T) {
	_, err := newPipeline().Run(context.Background(), filepath.Join(t.TempDir(), "absent"), "")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}

func TestRunEmptyInputWritesManifestOnly(t *testing.T) {
	input := t.TempDir()

	result, err := newPipeline().Run(context.Background(), input, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("total = %d, want 0", result.Total)
	}
	if !testsupport.Exists(t, filepath.Join(input, "encrypted", "password.txt")) {
		t.Error("manifest should be written for an empty run")
	}
}

func TestRunRecursiveFallback(t *testing.T) {
	input := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(input, "nested", "deep.pdf"), "doc")

	result, err := newPipeline().Run(context.Background(), input, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Total != 1 || result.Encrypted != 1 {
		t.Errorf("result = %+v, want one encrypted item from the recursive retry", result)
	}
}

func TestRunRecursiveSkipsOutputSubtree(t *testing.T) {
	cfg := protectionConfig()
	cfg.Recursive = true
	pipeline := protect.NewWithProtector(cfg, fakeProtector{}, logging.NewNop())

	input := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(input, "top.pdf"), "doc")
	testsupport.WriteFile(t, filepath.Join(input, "encrypted", "old.pdf"), "previous output")

	result, err := pipeline.Run(context.Background(), input, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("total = %d, want 1 (output subtree excluded)", result.Total)
	}
}

func TestRunExplicitOutputDirectory(t *testing.T) {
	input := t.TempDir()
	output := filepath.Join(t.TempDir(), "secure")
	testsupport.WriteFile(t, filepath.Join(input, "doc.pdf"), "doc")

	result, err := newPipeline().Run(context.Background(), input, output)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Encrypted != 1 {
		t.Errorf("result = %+v, want one encrypted item", result)
	}
	if !testsupport.Exists(t, filepath.Join(output, "doc.pdf")) {
		t.Error("output missing from explicit destination")
	}
	if !testsupport.Exists(t, filepath.Join(output, "password.txt")) {
		t.Error("manifest missing from explicit destination")
	}
}

func TestRunWorkerPoolProcessesLargeBatch(t *testing.T) {
	cfg := protectionConfig()
	cfg.Workers = 4
	pipeline := protect.NewWithProtector(cfg, fakeProtector{}, logging.NewNop())

	input := t.TempDir()
	const docs = 30
	for i := 0; i < docs; i++ {
		testsupport.WriteFile(t, filepath.Join(input, fmt.Sprintf("plain-%02d.pdf", i)), "doc")
	}

	result, err := pipeline.Run(context.Background(), input, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Total != docs || result.Encrypted != docs {
		t.Errorf("result = %+v, want all %d encrypted", result, docs)
	}
}
