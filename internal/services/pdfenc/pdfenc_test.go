package pdfenc

import (
	"errors"
	"path/filepath"
	"testing"

	"presswork/internal/logging"
	"presswork/internal/services"
	"presswork/internal/testsupport"
)

func TestIsProtectedUnreadableDocument(t *testing.T) {
	svc := NewService(logging.NewNop())
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	testsupport.WriteFile(t, path, "not a document")

	_, err := svc.IsProtected(path)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want external tool error", err)
	}
}

func TestProtectUnreadableDocument(t *testing.T) {
	svc := NewService(logging.NewNop())
	dir := t.TempDir()
	src := filepath.Join(dir, "garbage.pdf")
	testsupport.WriteFile(t, src, "not a document")

	variant, err := svc.Protect(src, filepath.Join(dir, "out.pdf"), "credential-123")
	if err == nil {
		t.Fatalf("expected error, got variant %q", variant)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Errorf("err = %v, want external tool error", err)
	}
}

func TestIsPasswordError(t *testing.T) {
	if !isPasswordError(errors.New("pdfcpu: please provide the correct password")) {
		t.Error("password refusal should be recognized")
	}
	if isPasswordError(errors.New("unexpected EOF")) {
		t.Error("unrelated errors are not password refusals")
	}
	if isPasswordError(nil) {
		t.Error("nil is not a password refusal")
	}
}
