package oidc

import (
	"context"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/accounthub/account-service/pkg/logger"
	"github.com/accounthub/account-service/pkg/middleware"
	"github.com/golang-jwt/jwt/v5"
)

// JWKSVerifier validates RS256 access tokens against a remote key set.
type JWKSVerifier struct {
	jwks     *keyfunc.JWKS
	issuer   string
	clientID string
}

// NewJWKSVerifier fetches the key set once and keeps refreshing it in the background.
func NewJWKSVerifier(jwksURL, issuer, clientID string) (*JWKSVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			logger.Warnf("failed to do a background refresh of JWKS: %v", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS from %s: %w", jwksURL, err)
	}
	return newJWKSVerifier(jwks, issuer, clientID), nil
}

func newJWKSVerifier(jwks *keyfunc.JWKS, issuer, clientID string) *JWKSVerifier {
	return &JWKSVerifier{jwks: jwks, issuer: issuer, clientID: clientID}
}

func (v *JWKSVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if err := checkAccessToken(claims, v.clientID); err != nil {
		return nil, err
	}
	return &claimsToken{claims: claims}, nil
}

// Close stops the background refresh.
func (v *JWKSVerifier) Close() {
	v.jwks.EndBackground()
}
