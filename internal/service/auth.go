package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/mmk-ui-client/config"
	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
	apierrors "github.com/target/mmk-ui-client/internal/errors"
	"github.com/target/mmk-ui-client/internal/ports"
	"github.com/target/mmk-ui-client/internal/session"
	"github.com/target/mmk-ui-client/internal/transport"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Client      *transport.Client
	Credentials ports.CredentialStore // token variant only
	Session     *session.Store
	Provider    ports.LoginProvider // cookie variant SSO, may be nil
	Roles       ports.RoleMapper
	Logger      *slog.Logger
}

// AuthService orchestrates login, logout and session rehydration on top of
// the transport.
type AuthService struct {
	client  *transport.Client
	creds   ports.CredentialStore
	session *session.Store
	sso     ports.LoginProvider
	roles   ports.RoleMapper
	logger  *slog.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Client == nil {
		return nil, errors.New("transport client is required")
	}
	if opts.Session == nil {
		return nil, errors.New("session store is required")
	}
	if opts.Roles == nil {
		return nil, errors.New("role mapper is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		client:  opts.Client,
		creds:   opts.Credentials,
		session: opts.Session,
		sso:     opts.Provider,
		roles:   opts.Roles,
		logger:  logger,
	}, nil
}

// loginResponse is the wire shape of POST /auth/login.
type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login authenticates with email and password, persists the returned
// credential pair, and rehydrates the session. Token variant only.
func (s *AuthService) Login(ctx context.Context, email, password string) (domainauth.Session, error) {
	if s.client.Variant() != config.AuthVariantToken {
		return domainauth.Session{}, errors.New("password login requires the token variant")
	}
	if email == "" || password == "" {
		return domainauth.Session{}, apierrors.Validation("email and password are required")
	}

	var resp loginResponse
	payload := map[string]string{"email": email, "password": password}
	if err := s.client.Post(ctx, "/auth/login", payload, &resp); err != nil {
		return domainauth.Session{}, fmt.Errorf("login: %w", err)
	}
	if resp.AccessToken == "" {
		return domainauth.Session{}, errors.New("login response missing access token")
	}

	creds := domainauth.Credentials{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	if resp.ExpiresIn > 0 {
		creds.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	if err := s.creds.Save(ctx, creds); err != nil {
		return domainauth.Session{}, fmt.Errorf("persist credentials: %w", err)
	}

	sess, err := s.Rehydrate(ctx)
	if err != nil {
		return domainauth.Session{}, err
	}
	s.logger.Info("logged in", "user", sess.User.UserID, "role", sess.Role)
	return sess, nil
}

// BeginSSO starts the browser SSO flow. Returns the URL the user must
// visit plus the state and nonce to hold for CompleteSSO.
func (s *AuthService) BeginSSO(ctx context.Context, redirectURL string) (authURL, state, nonce string, err error) {
	if s.sso == nil {
		return "", "", "", errors.New("no SSO provider configured")
	}
	return s.sso.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
}

// CompleteSSO finishes the SSO flow with the code returned by the IdP.
//
// The provider verifies the exchange and yields the identity. The cookie
// variant must additionally sign in against the API: the verified ID token
// is posted to /auth/login through the jar-equipped transport so the
// HttpOnly session cookie is captured, and the session is then rebuilt from
// GET /users/me rather than trusted locally. Other variants keep the
// locally-derived session.
func (s *AuthService) CompleteSSO(ctx context.Context, code, state, nonce string) (domainauth.Session, error) {
	if s.sso == nil {
		return domainauth.Session{}, errors.New("no SSO provider configured")
	}

	res, err := s.sso.Exchange(ctx, ports.ExchangeInput{Code: code, State: state, Nonce: nonce})
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("complete SSO login: %w", err)
	}

	if s.client.Variant() == config.AuthVariantCookie {
		payload := map[string]string{"id_token": res.IDToken}
		if err := s.client.Post(ctx, "/auth/login", payload, nil); err != nil {
			return domainauth.Session{}, fmt.Errorf("establish session: %w", err)
		}
		sess, err := s.Rehydrate(ctx)
		if err != nil {
			return domainauth.Session{}, err
		}
		s.logger.Info("logged in", "user", sess.User.UserID, "role", sess.Role)
		return sess, nil
	}

	role := s.roles.Map(res.Identity.Groups)
	s.session.Set(res.Identity, role, domainauth.DefaultPermissions(role))
	s.logger.Info("logged in", "user", res.Identity.UserID, "role", role)
	return s.session.Current(), nil
}

// Logout ends the server session best effort, then always clears local
// state. A failed server call never leaves the client logged in.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.client.Post(ctx, "/auth/logout", nil, nil); err != nil {
		if !apierrors.IsAuthExpired(err) && !apierrors.IsRefreshFailed(err) {
			s.logger.Warn("server logout failed", "error", err)
		}
	}

	if s.creds != nil {
		if err := s.creds.Delete(ctx); err != nil {
			return fmt.Errorf("erase credentials: %w", err)
		}
	}
	s.session.Clear()
	s.logger.Info("logged out")
	return nil
}

// meResponse is the wire shape of GET /users/me.
type meResponse struct {
	User domainauth.Identity `json:"user"`
}

// Rehydrate fetches the current identity and rebuilds session state from
// it. Called after login and at startup when stored credentials exist.
func (s *AuthService) Rehydrate(ctx context.Context) (domainauth.Session, error) {
	var resp meResponse
	if err := s.client.Get(ctx, "/users/me", nil, &resp); err != nil {
		return domainauth.Session{}, fmt.Errorf("fetch identity: %w", err)
	}
	if resp.User.UserID == "" {
		return domainauth.Session{}, errors.New("identity response missing user")
	}

	role := s.roles.Map(resp.User.Groups)
	s.session.Set(resp.User, role, domainauth.DefaultPermissions(role))
	return s.session.Current(), nil
}

// Current returns the in-memory session without a network call.
func (s *AuthService) Current() domainauth.Session {
	return s.session.Current()
}
