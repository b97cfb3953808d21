package ports

// Package ports defines interfaces (hexagonal ports) for client-side auth
// behavior. Implementations live in internal/adapters; orchestration in
// internal/service and internal/transport.

import (
	"context"
	"errors"

	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
)

// ErrNoCredentials is returned by CredentialStore.Load when no credential
// pair is persisted.
var ErrNoCredentials = errors.New("no stored credentials")

// CredentialStore persists the access/refresh credential pair between runs.
// Load must return ErrNoCredentials (not a zero pair) when nothing is stored,
// so callers can distinguish "logged out" from "empty tokens".
type CredentialStore interface {
	Load(ctx context.Context) (domainauth.Credentials, error)
	Save(ctx context.Context, creds domainauth.Credentials) error
	Delete(ctx context.Context) error
}

// BeginInput carries inputs for initiating an SSO login flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// ExchangeResult carries the outcome of a completed exchange: the verified
// identity plus the raw ID token, which the cookie variant forwards to the
// API to establish the server-side session.
type ExchangeResult struct {
	Identity domainauth.Identity
	IDToken  string
}

// LoginProvider initiates and completes a browser SSO login flow against an
// IdP. Used by the cookie variant; the token variant logs in with a direct
// credentials POST instead.
type LoginProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (ExchangeResult, error)
}

// RoleMapper maps directory groups to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
