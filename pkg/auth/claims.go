// Package auth provides JWT-based authentication for promatch-engine.
// It validates tokens issued by the identity provider using JWKS endpoints.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// TokenKey is the context key for storing the raw JWT token string.
	TokenKey contextKey = "token"
)

// Claims represents the JWT claims structure from the identity provider.
// It embeds RegisteredClaims for standard JWT fields (sub, iss, exp, etc.).
// The subject is the user's account UUID.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"` // User email address
	Role  string `json:"role,omitempty"`  // Account role (client, business, admin)
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetToken retrieves the raw JWT token string from the request context.
// Returns empty string and false if token is not present.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// GetUserIDFromContext extracts the user ID from JWT claims in the context.
// Returns uuid.Nil and false if not authenticated or the subject is not a UUID.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil || claims.Subject == "" {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, false
	}

	return userID, true
}

// RequireUserIDFromContext extracts the user ID from context and returns an
// error if not found or invalid. Use this when the operation needs a caller.
func RequireUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, fmt.Errorf("authentication required: no valid user ID in context")
	}
	return userID, nil
}

// GetRoleFromContext extracts the account role from JWT claims in the context.
// Returns empty string if not authenticated.
func GetRoleFromContext(ctx context.Context) string {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return ""
	}
	return claims.Role
}
