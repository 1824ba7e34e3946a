package oidc

import (
	"context"
	"fmt"

	"github.com/accounthub/account-service/pkg/middleware"
	"github.com/coreos/go-oidc/v3/oidc"
)

// Verifier validates access tokens using the issuer's discovery document.
// go-oidc checks signature, issuer and expiry; the audience check is skipped
// because access tokens carry client_id instead of aud.
type Verifier struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	clientID string
}

// NewVerifier creates a new OIDC verifier for the given issuer and client ID
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{SkipClientIDCheck: true})
	return &Verifier{provider: provider, verifier: verifier, clientID: clientID}, nil
}

// Verify verifies the provided raw access token and returns a middleware.Token
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	tok, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		return nil, err
	}
	if err := checkAccessToken(claims, v.clientID); err != nil {
		return nil, err
	}
	return tok, nil
}
