// Package oidc implements ports.LoginProvider against an OIDC identity
// provider. The cookie variant uses it to run the browser SSO flow: Begin
// yields the URL the user visits, Exchange turns the returned code into a
// verified identity.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
	"github.com/target/mmk-ui-client/internal/ports"
)

// Provider runs the authorization-code flow and verifies ID tokens.
type Provider struct {
	oauth    *oauth2.Config
	verifier *gooidc.IDTokenVerifier
	provider *gooidc.Provider
}

// Config holds the IdP registration for NewProvider.
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string

	// HTTPClient overrides the client used for discovery and token calls.
	HTTPClient *http.Client
}

// NewProvider discovers the issuer endpoints and builds the flow.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)

	issuer := strings.TrimSuffix(cfg.IssuerURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("discover issuer: %w", err)
	}

	scope := cfg.Scope
	if scope == "" {
		scope = "openid profile email"
	}

	return &Provider{
		provider: op,
		verifier: op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       strings.Fields(scope),
			Endpoint:     op.Endpoint(),
		},
	}, nil
}

// Begin returns the provider auth URL plus the state and nonce the caller
// must hold on to for Exchange.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL != "" && in.RedirectURL != p.oauth.RedirectURL {
		return "", "", "", fmt.Errorf("redirect URL %q does not match registration", in.RedirectURL)
	}

	state, err := randomToken(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	authURL := p.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

// Exchange redeems the authorization code, verifies the ID token and
// nonce, and maps the claims onto the domain identity. The raw ID token is
// returned alongside so the caller can sign in against the API with it.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (ports.ExchangeResult, error) {
	if in.Code == "" {
		return ports.ExchangeResult{}, errors.New("authorization code is required")
	}

	token, err := p.oauth.Exchange(ctx, in.Code)
	if err != nil {
		return ports.ExchangeResult{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	rawID, ok := token.Extra("id_token").(string)
	if !ok || rawID == "" {
		return ports.ExchangeResult{}, errors.New("token response missing id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return ports.ExchangeResult{}, fmt.Errorf("verify id_token: %w", err)
	}

	var claims identityClaims
	if err := idToken.Claims(&claims); err != nil {
		return ports.ExchangeResult{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	if in.Nonce != "" && claims.Nonce != in.Nonce {
		return ports.ExchangeResult{}, errors.New("nonce mismatch")
	}

	identity := claims.identity()
	if identity.UserID == "" || identity.Email == "" {
		if err := p.fillFromUserInfo(ctx, token, &identity); err != nil {
			return ports.ExchangeResult{}, fmt.Errorf("fetch user info: %w", err)
		}
	}
	return ports.ExchangeResult{Identity: identity, IDToken: rawID}, nil
}

// identityClaims covers both standard OIDC and AD-style claim names.
type identityClaims struct {
	Sub            string   `json:"sub"`
	SamAccountName string   `json:"samaccountname"`
	GivenName      string   `json:"given_name"`
	FamilyName     string   `json:"family_name"`
	Email          string   `json:"email"`
	Mail           string   `json:"mail"`
	Groups         []string `json:"groups"`
	MemberOf       []string `json:"memberof"`
	Nonce          string   `json:"nonce"`
}

func (c identityClaims) identity() domainauth.Identity {
	groups := c.Groups
	if len(groups) == 0 {
		groups = c.MemberOf
	}
	return domainauth.Identity{
		UserID:    firstNonEmpty(c.SamAccountName, c.Sub),
		FirstName: c.GivenName,
		LastName:  c.FamilyName,
		Email:     firstNonEmpty(c.Email, c.Mail),
		Groups:    groups,
	}
}

func (p *Provider) fillFromUserInfo(ctx context.Context, token *oauth2.Token, identity *domainauth.Identity) error {
	info, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return err
	}

	var claims identityClaims
	if err := info.Claims(&claims); err != nil {
		return fmt.Errorf("decode user info claims: %w", err)
	}

	fromInfo := claims.identity()
	if identity.UserID == "" {
		identity.UserID = fromInfo.UserID
	}
	if identity.Email == "" {
		identity.Email = fromInfo.Email
	}
	if identity.FirstName == "" {
		identity.FirstName = fromInfo.FirstName
	}
	if identity.LastName == "" {
		identity.LastName = fromInfo.LastName
	}
	if len(identity.Groups) == 0 {
		identity.Groups = fromInfo.Groups
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// randomToken returns a URL-safe random string of exactly n characters.
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
