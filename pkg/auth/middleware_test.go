package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func authedRequest(subject, role string) (*http.Request, *mockJWKSClient) {
	mock := &mockJWKSClient{
		claims: &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
			Role:             role,
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	return req, mock
}

func TestMiddleware_RequireAuth_SetsClaimsInContext(t *testing.T) {
	req, mock := authedRequest("user-123", "client")
	m := NewMiddleware(NewAuthService(mock, zap.NewNop()), zap.NewNop())

	var gotClaims *Claims
	var gotToken string
	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = GetClaims(r.Context())
		gotToken, _ = GetToken(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotClaims == nil || gotClaims.Subject != "user-123" {
		t.Errorf("claims not set in context: %+v", gotClaims)
	}
	if gotToken != "some-token" {
		t.Errorf("token = %q, want some-token", gotToken)
	}
}

func TestMiddleware_RequireAuth_RejectsUnauthenticated(t *testing.T) {
	m := NewMiddleware(NewAuthService(&mockJWKSClient{}, zap.NewNop()), zap.NewNop())

	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestMiddleware_RequireAuth_RejectsMissingSubject(t *testing.T) {
	req, mock := authedRequest("", "client")
	m := NewMiddleware(NewAuthService(mock, zap.NewNop()), zap.NewNop())

	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	})

	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestMiddleware_RequireRole(t *testing.T) {
	t.Run("matching role passes", func(t *testing.T) {
		req, mock := authedRequest("user-123", "business")
		m := NewMiddleware(NewAuthService(mock, zap.NewNop()), zap.NewNop())

		reached := false
		handler := m.RequireRole("business")(func(w http.ResponseWriter, r *http.Request) {
			reached = true
		})

		rec := httptest.NewRecorder()
		handler(rec, req)

		if !reached {
			t.Error("handler should have been reached")
		}
	})

	t.Run("wrong role forbidden", func(t *testing.T) {
		req, mock := authedRequest("user-123", "client")
		m := NewMiddleware(NewAuthService(mock, zap.NewNop()), zap.NewNop())

		handler := m.RequireRole("business")(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be reached")
		})

		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})
}
