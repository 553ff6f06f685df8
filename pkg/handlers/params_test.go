package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestParseProjectID(t *testing.T) {
	want := uuid.New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects/{pid}", func(w http.ResponseWriter, r *http.Request) {
		got, ok := ParseProjectID(w, r, zap.NewNop())
		if !ok {
			return
		}
		if got != want {
			t.Errorf("parsed id = %v, want %v", got, want)
		}
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects/"+want.String(), nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status for malformed id = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
