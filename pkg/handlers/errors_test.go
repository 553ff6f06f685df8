package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/promatch-inc/promatch-engine/pkg/apperrors"
)

func TestWriteServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{"not authorized", apperrors.ErrNotAuthorized, http.StatusForbidden, "not_authorized"},
		{"invalid state", apperrors.ErrInvalidState, http.StatusConflict, "invalid_state"},
		{"project not open", apperrors.ErrProjectNotOpen, http.StatusConflict, "project_not_open"},
		{"duplicate proposal", apperrors.ErrDuplicateProposal, http.StatusConflict, "duplicate_proposal"},
		{"concurrent modification", apperrors.ErrConcurrentModification, http.StatusConflict, "concurrent_modification"},
		{"invalid amount", apperrors.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
		{"unsafe content", apperrors.ErrUnsafeContent, http.StatusUnprocessableEntity, "unsafe_content"},
		{"unknown error", fmt.Errorf("connection refused"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteServiceError(rec, zap.NewNop(), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body["error"] != tt.wantCode {
				t.Errorf("error code = %q, want %q", body["error"], tt.wantCode)
			}
		})
	}
}

func TestWriteServiceError_WrappedErrorsStillMap(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := fmt.Errorf("proposal is rejected: %w", apperrors.ErrInvalidState)
	WriteServiceError(rec, zap.NewNop(), wrapped)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestWriteServiceError_InternalErrorsDoNotLeak(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteServiceError(rec, zap.NewNop(), fmt.Errorf("pq: password authentication failed"))

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["message"] != "An internal error occurred" {
		t.Errorf("internal detail leaked: %q", body["message"])
	}
}
