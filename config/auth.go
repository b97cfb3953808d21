package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthVariant selects how the client proves identity to the API.
type AuthVariant string

const (
	// AuthVariantToken persists an access/refresh token pair and sends
	// Authorization: Bearer headers. Refresh is coordinated client-side.
	AuthVariantToken AuthVariant = "token"
	// AuthVariantCookie relies on HttpOnly session cookies set by the server.
	// The server renews the session; a 401 means a fresh login is required.
	AuthVariantCookie AuthVariant = "cookie"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthVariant.
func (v *AuthVariant) UnmarshalText(text []byte) error {
	value := strings.ToLower(string(text))
	switch value {
	case "token", "cookie":
		*v = AuthVariant(value)
		return nil
	default:
		return fmt.Errorf("invalid AuthVariant: %q (valid options: token, cookie)", value)
	}
}

// LoginMode determines which login provider the cookie variant uses.
type LoginMode string

const (
	// LoginModeOAuth uses OIDC browser SSO for login.
	LoginModeOAuth LoginMode = "oauth"
	// LoginModeMock uses mock/dev login (for development only).
	LoginModeMock LoginMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for LoginMode.
func (m *LoginMode) UnmarshalText(text []byte) error {
	value := strings.ToLower(string(text))
	switch value {
	case "oauth", "mock":
		*m = LoginMode(value)
		return nil
	default:
		return fmt.Errorf("invalid LoginMode: %q (valid options: oauth, mock)", value)
	}
}

// OAuthConfig contains OIDC SSO configuration for the cookie variant.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"merrymaker"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"merrymaker"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8910/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// DevAuthConfig controls mock/dev login identity.
// Used when LOGIN_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID string   `env:"USER_ID" envDefault:"dev-user"`
	Email  string   `env:"EMAIL"   envDefault:"dev@example.com"`
	Groups []string `env:"GROUPS"  envDefault:"admins"          envSeparator:";"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Variant determines how credentials are attached to requests.
	Variant AuthVariant `env:"AUTH_VARIANT" envDefault:"token"`

	// CredentialsFile is where the token variant persists its credential pair.
	// Defaults to $HOME/.config/mmk/credentials.json when empty.
	CredentialsFile string `env:"AUTH_CREDENTIALS_FILE"`

	// RefreshTimeout bounds a single /auth/refresh call so a hung refresh
	// cannot stall every waiting request.
	RefreshTimeout time.Duration `env:"AUTH_REFRESH_TIMEOUT" envDefault:"15s"`

	// Login mode for the cookie variant.
	LoginMode LoginMode `env:"LOGIN_MODE" envDefault:"oauth"`

	// OAuth configuration (used when LoginMode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when LoginMode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminGroup is the directory group granting admin access.
	AdminGroup string `env:"ADMIN_GROUP" envDefault:"mmk-admins"`

	// UserGroup is the directory group granting regular access.
	UserGroup string `env:"USER_GROUP" envDefault:"mmk-users"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.RefreshTimeout <= 0 {
		a.RefreshTimeout = 15 * time.Second
	}
}
