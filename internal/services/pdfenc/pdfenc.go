package pdfenc

import (
	"log/slog"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"presswork/internal/logging"
	"presswork/internal/services"
)

// variant is one capability level of the protection primitive. Variants are
// tried strongest first.
type variant struct {
	name string
	conf func(credential string) *model.Configuration
}

var variants = []variant{
	{"aes-256", func(pw string) *model.Configuration { return model.NewAESConfiguration(pw, pw, 256) }},
	{"aes-128", func(pw string) *model.Configuration { return model.NewAESConfiguration(pw, pw, 128) }},
	{"rc4-128", func(pw string) *model.Configuration { return model.NewRC4Configuration(pw, pw, 128) }},
	{"rc4-40", func(pw string) *model.Configuration { return model.NewRC4Configuration(pw, pw, 40) }},
}

// Service applies password protection to documents.
type Service struct {
	logger *slog.Logger
}

// NewService constructs the protection primitive adapter.
func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logging.WithComponent(logger, "pdfenc")}
}

// IsProtected reports whether the document at path is already encrypted.
func (s *Service) IsProtected(path string) (bool, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		// pdfcpu refuses encrypted documents without their password; that
		// refusal is the positive signal here.
		if isPasswordError(err) {
			return true, nil
		}
		return false, services.Wrap(services.ErrExternalTool, "pdfenc", "inspect", "Failed to read document", err)
	}
	return ctx.Encrypt != nil, nil
}

// Protect encrypts src into dst with the shared credential, trying each
// cipher variant in order until one succeeds. The variant used is returned
// for observability.
func (s *Service) Protect(src, dst, credential string) (string, error) {
	var lastErr error
	for _, v := range variants {
		if err := api.EncryptFile(src, dst, v.conf(credential)); err != nil {
			lastErr = err
			s.logger.Debug("cipher variant unavailable",
				logging.String("variant", v.name), logging.Error(err))
			continue
		}
		return v.name, nil
	}
	return "", services.Wrap(services.ErrExternalTool, "pdfenc", "encrypt", "All cipher variants failed", lastErr)
}

func isPasswordError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "password")
}
