// Package devauth is a config-driven ports.LoginProvider for local
// development. Begin short-circuits the IdP redirect with a local callback
// URL; Exchange returns the configured identity without talking to anyone.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
	"github.com/target/mmk-ui-client/internal/ports"
)

// Config describes the identity the provider hands out.
type Config struct {
	UserID string
	Email  string
	Groups []string
}

// Provider implements ports.LoginProvider for development use.
type Provider struct {
	identity domainauth.Identity
}

// NewProvider validates the config and builds the provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: user ID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: email is required")
	}
	return &Provider{
		identity: domainauth.Identity{
			UserID: cfg.UserID,
			Email:  cfg.Email,
			Groups: append([]string(nil), cfg.Groups...),
		},
	}, nil
}

// Begin returns a local callback URL with fresh state and nonce, matching
// the shape the real flow produces.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomToken(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	return "/auth/callback?code=dev&state=" + state, state, nonce, nil
}

// Exchange ignores the code and returns the configured identity. State
// validation stays with the caller, as in the real flow. The ID token is a
// fixed sentinel the dev server's mock login accepts.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (ports.ExchangeResult, error) {
	identity := p.identity
	identity.Groups = append([]string(nil), p.identity.Groups...)
	return ports.ExchangeResult{Identity: identity, IDToken: "dev"}, nil
}

func randomToken(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	for len(s) < n {
		s += "x"
	}
	return s[:n], nil
}
