package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestGetUserIDFromContext(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name   string
		claims *Claims
		wantID uuid.UUID
		wantOK bool
	}{
		{
			name: "valid subject",
			claims: &Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
			},
			wantID: userID,
			wantOK: true,
		},
		{
			name: "subject is not a UUID",
			claims: &Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"},
			},
			wantID: uuid.Nil,
			wantOK: false,
		},
		{
			name:   "empty subject",
			claims: &Claims{},
			wantID: uuid.Nil,
			wantOK: false,
		},
		{
			name:   "no claims in context",
			claims: nil,
			wantID: uuid.Nil,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.claims != nil {
				ctx = context.WithValue(ctx, ClaimsKey, tt.claims)
			}

			gotID, gotOK := GetUserIDFromContext(ctx)
			if gotOK != tt.wantOK {
				t.Errorf("ok = %v, want %v", gotOK, tt.wantOK)
			}
			if gotID != tt.wantID {
				t.Errorf("id = %v, want %v", gotID, tt.wantID)
			}
		})
	}
}

func TestRequireUserIDFromContext(t *testing.T) {
	if _, err := RequireUserIDFromContext(context.Background()); err == nil {
		t.Error("expected error for unauthenticated context")
	}

	userID := uuid.New()
	ctx := context.WithValue(context.Background(), ClaimsKey, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
	})

	got, err := RequireUserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != userID {
		t.Errorf("id = %v, want %v", got, userID)
	}
}

func TestGetRoleFromContext(t *testing.T) {
	if got := GetRoleFromContext(context.Background()); got != "" {
		t.Errorf("expected empty role for unauthenticated context, got %q", got)
	}

	ctx := context.WithValue(context.Background(), ClaimsKey, &Claims{Role: "business"})
	if got := GetRoleFromContext(ctx); got != "business" {
		t.Errorf("role = %q, want business", got)
	}
}
