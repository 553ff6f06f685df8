package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func TestRequestLogger_EmitsOneEntryPerRequest(t *testing.T) {
	logger, logs := observedLogger()

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	if logs.Len() != 1 {
		t.Fatalf("log entries = %d, want 1", logs.Len())
	}

	entry := logs.All()[0]
	if entry.Message != "HTTP request" {
		t.Errorf("message = %q, want 'HTTP request'", entry.Message)
	}
	fields := entry.ContextMap()
	if fields["method"] != http.MethodGet {
		t.Errorf("method field = %v, want GET", fields["method"])
	}
	if fields["path"] != "/api/projects" {
		t.Errorf("path field = %v, want /api/projects", fields["path"])
	}
}

func TestRequestLogger_NilLoggerPassesThrough(t *testing.T) {
	called := false
	handler := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	if !called {
		t.Error("wrapped handler was not called")
	}
}

func TestRequestLogger_RecordsHandlerStatus(t *testing.T) {
	logger, logs := observedLogger()

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/proposals/x/accept", nil))

	status := logs.All()[0].ContextMap()["status"]
	if status != int64(http.StatusConflict) {
		t.Errorf("status field = %v, want %d", status, http.StatusConflict)
	}
}

func TestResponseWriter_IgnoresSecondWriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusCreated {
		t.Errorf("captured status = %d, want %d", rw.statusCode, http.StatusCreated)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("recorded status = %d, want %d", rec.Code, http.StatusCreated)
	}
}

func TestResponseWriter_WriteImpliesOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	if _, err := rw.Write([]byte(`{"success":true}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !rw.wroteHeader {
		t.Error("Write should mark the header as written")
	}
	if rw.statusCode != http.StatusOK {
		t.Errorf("captured status = %d, want %d", rw.statusCode, http.StatusOK)
	}
}
