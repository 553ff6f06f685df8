package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/promatch-inc/promatch-engine/pkg/apperrors"
)

// WriteServiceError maps a domain error to an HTTP status and writes the
// error response. Unknown errors become a generic 500 so internals don't
// leak to clients.
func WriteServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var status int
	var code string
	message := err.Error()

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrNotAuthorized):
		status, code = http.StatusForbidden, "not_authorized"
	case errors.Is(err, apperrors.ErrInvalidState):
		status, code = http.StatusConflict, "invalid_state"
	case errors.Is(err, apperrors.ErrProjectNotOpen):
		status, code = http.StatusConflict, "project_not_open"
	case errors.Is(err, apperrors.ErrDuplicateProposal):
		status, code = http.StatusConflict, "duplicate_proposal"
	case errors.Is(err, apperrors.ErrConcurrentModification):
		status, code = http.StatusConflict, "concurrent_modification"
	case errors.Is(err, apperrors.ErrInvalidAmount):
		status, code = http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, apperrors.ErrUnsafeContent):
		status, code = http.StatusUnprocessableEntity, "unsafe_content"
	default:
		status, code = http.StatusInternalServerError, "internal_error"
		message = "An internal error occurred"
		logger.Error("Unhandled service error", zap.Error(err))
	}

	if writeErr := ErrorResponse(w, status, code, message); writeErr != nil {
		logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}
