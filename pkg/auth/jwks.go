package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// JWKSClientInterface defines the interface for JWT token validation.
// This abstraction enables testing with mock implementations.
type JWKSClientInterface interface {
	// ValidateToken validates a JWT token string and returns the claims.
	// Returns an error if the token is invalid, expired, or has an unauthorized issuer.
	ValidateToken(tokenString string) (*Claims, error)
	// Close releases any resources held by the client.
	Close()
}

// JWKSConfig contains configuration for the JWKS client.
type JWKSConfig struct {
	// EnableVerification controls whether JWT signatures are verified.
	// Disable only for local development without an identity provider.
	EnableVerification bool
	// JWKSEndpoints maps issuer URLs to their JWKS endpoint URLs. Tokens
	// from issuers outside this map are rejected.
	JWKSEndpoints map[string]string
}

// JWKSClient validates the JWTs the identity provider issues to marketplace
// accounts. Public keys are fetched from the configured JWKS endpoints and
// refreshed in the background by keyfunc.
type JWKSClient struct {
	issuerKeys map[string]keyfunc.Keyfunc
	verify     bool
}

// NewJWKSClient creates a JWKS client. With verification enabled it fetches
// the key set of every configured issuer up front, so a bad endpoint fails
// at startup instead of on the first request.
func NewJWKSClient(config *JWKSConfig) (*JWKSClient, error) {
	client := &JWKSClient{
		issuerKeys: make(map[string]keyfunc.Keyfunc),
		verify:     config.EnableVerification,
	}

	if !client.verify {
		return client, nil
	}

	for issuer, jwksURL := range config.JWKSEndpoints {
		jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
		if err != nil {
			return nil, fmt.Errorf("failed to load JWKS for issuer %s: %w", issuer, err)
		}
		client.issuerKeys[issuer] = jwks
	}

	return client, nil
}

// ValidateToken validates a JWT and returns its claims. The claims carry the
// account id (sub) and role used for the client/business split downstream.
func (c *JWKSClient) ValidateToken(tokenString string) (*Claims, error) {
	if !c.verify {
		return c.parseUnverified(tokenString)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, c.resolveKey)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	return tokenClaims(token)
}

// resolveKey picks the signing key for a token based on its issuer claim.
func (c *JWKSClient) resolveKey(token *jwt.Token) (interface{}, error) {
	// The identity provider signs with RS256
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	claims, err := tokenClaims(token)
	if err != nil {
		return nil, err
	}

	jwks, exists := c.issuerKeys[claims.Issuer]
	if !exists {
		return nil, fmt.Errorf("unauthorized issuer: %s", claims.Issuer)
	}

	return jwks.KeyfuncCtx(context.Background())(token)
}

// parseUnverified decodes a JWT without checking the signature or expiry.
// Local development only.
func (c *JWKSClient) parseUnverified(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, _, err := parser.ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	return tokenClaims(token)
}

func tokenClaims(token *jwt.Token) (*Claims, error) {
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}
	return claims, nil
}

// Close releases any resources held by the client.
func (c *JWKSClient) Close() {
	// keyfunc v3 needs no explicit cleanup
}

var _ JWKSClientInterface = (*JWKSClient)(nil)
