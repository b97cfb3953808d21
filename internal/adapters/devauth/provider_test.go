package devauth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-ui-client/internal/ports"
)

func TestNewProvider_Validation(t *testing.T) {
	_, err := NewProvider(Config{Email: "dev@example.com"})
	assert.Error(t, err)

	_, err = NewProvider(Config{UserID: "dev"})
	assert.Error(t, err)

	_, err = NewProvider(Config{UserID: "dev", Email: "dev@example.com"})
	assert.NoError(t, err)
}

func TestProvider_Begin(t *testing.T) {
	p, err := NewProvider(Config{UserID: "dev", Email: "dev@example.com"})
	require.NoError(t, err)

	authURL, state, nonce, err := p.Begin(context.Background(), ports.BeginInput{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(authURL, "/auth/callback?code=dev&state="))
	assert.Len(t, state, 24)
	assert.Len(t, nonce, 24)
	assert.Contains(t, authURL, state)
}

func TestProvider_ExchangeReturnsConfiguredIdentity(t *testing.T) {
	p, err := NewProvider(Config{
		UserID: "dev",
		Email:  "dev@example.com",
		Groups: []string{"mmk-admins"},
	})
	require.NoError(t, err)

	res, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "dev", res.Identity.UserID)
	assert.Equal(t, "dev@example.com", res.Identity.Email)
	assert.Equal(t, []string{"mmk-admins"}, res.Identity.Groups)
	assert.Equal(t, "dev", res.IDToken)

	// Mutating the returned slice must not leak into the provider.
	res.Identity.Groups[0] = "tampered"
	again, err := p.Exchange(context.Background(), ports.ExchangeInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"mmk-admins"}, again.Identity.Groups)
}
