// Package content screens user-supplied free text before it is persisted.
// Titles, descriptions, and work plans are rendered back to other users, so
// payloads that fingerprint as XSS or SQL injection are rejected outright
// rather than stripped.
package content

import (
	"fmt"

	libinjection "github.com/corazawaf/libinjection-go"
	"go.uber.org/zap"

	"github.com/promatch-inc/promatch-engine/pkg/apperrors"
)

// Screener checks free-text fields for injection payloads.
type Screener struct {
	logger *zap.Logger
}

// NewScreener creates a Screener.
func NewScreener(logger *zap.Logger) *Screener {
	return &Screener{logger: logger.Named("content-screener")}
}

// CheckText screens a single field value. Returns an error wrapping
// ErrUnsafeContent naming the offending field, or nil if the value is clean.
func (s *Screener) CheckText(field, value string) error {
	if value == "" {
		return nil
	}

	if isSQLi, fingerprint := libinjection.IsSQLi(value); isSQLi {
		s.logger.Warn("Rejected text with SQL injection fingerprint",
			zap.String("field", field),
			zap.String("fingerprint", string(fingerprint)))
		return fmt.Errorf("field %q: %w", field, apperrors.ErrUnsafeContent)
	}

	if libinjection.IsXSS(value) {
		s.logger.Warn("Rejected text with XSS payload",
			zap.String("field", field))
		return fmt.Errorf("field %q: %w", field, apperrors.ErrUnsafeContent)
	}

	return nil
}

// CheckAll screens a set of named field values and returns the first failure.
func (s *Screener) CheckAll(fields map[string]string) error {
	for field, value := range fields {
		if err := s.CheckText(field, value); err != nil {
			return err
		}
	}
	return nil
}
