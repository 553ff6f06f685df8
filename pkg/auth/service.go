package auth

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Common authentication errors.
var (
	ErrMissingAuthorization = errors.New("missing authorization")
	ErrInvalidAuthFormat    = errors.New("invalid authorization header format")
	ErrMissingSubject       = errors.New("missing subject in token")
)

// jwtCookieName is the cookie browser clients carry the token in.
const jwtCookieName = "promatch_jwt"

// AuthService defines the interface for authentication operations.
// It separates token extraction and validation from HTTP handling so both
// sides can be tested on their own.
type AuthService interface {
	// ValidateRequest extracts and validates a JWT from the request,
	// checking the promatch_jwt cookie first (browser clients), then the
	// Authorization header with Bearer scheme (API clients). Returns the
	// validated claims and the raw token string.
	ValidateRequest(r *http.Request) (*Claims, string, error)

	// RequireSubject validates that the claims identify an account.
	RequireSubject(claims *Claims) error
}

type authService struct {
	jwksClient JWKSClientInterface
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService with the given JWKS client and logger.
func NewAuthService(jwksClient JWKSClientInterface, logger *zap.Logger) AuthService {
	return &authService{
		jwksClient: jwksClient,
		logger:     logger,
	}
}

var _ AuthService = (*authService)(nil)

func (s *authService) ValidateRequest(r *http.Request) (*Claims, string, error) {
	tokenString, tokenSource, err := extractToken(r)
	if err != nil {
		s.logger.Debug("No usable JWT in request",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method))
		return nil, "", err
	}

	claims, err := s.jwksClient.ValidateToken(tokenString)
	if err != nil {
		s.logger.Debug("JWT validation failed",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("token_source", tokenSource))
		return nil, "", err
	}

	return claims, tokenString, nil
}

// extractToken pulls the raw JWT out of the request, preferring the cookie.
func extractToken(r *http.Request) (token, source string, err error) {
	if cookie, cerr := r.Cookie(jwtCookieName); cerr == nil {
		return cookie.Value, "cookie", nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "", ErrMissingAuthorization
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "", ErrInvalidAuthFormat
	}

	return parts[1], "header", nil
}

func (s *authService) RequireSubject(claims *Claims) error {
	if claims.Subject == "" {
		return ErrMissingSubject
	}
	return nil
}
