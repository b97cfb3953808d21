package service

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/target/mmk-ui-client/config"
	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
	authmocks "github.com/target/mmk-ui-client/internal/mocks/auth"
	"github.com/target/mmk-ui-client/internal/session"
	"github.com/target/mmk-ui-client/internal/transport"
)

type serviceFixture struct {
	client  *transport.Client
	creds   *authmocks.MemoryCredentialStore
	session *session.Store
}

// newServiceFixture builds a token-variant client against the given
// handler, seeded with a valid credential pair and authenticated session.
func newServiceFixture(t *testing.T, handler http.Handler) serviceFixture {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	creds := authmocks.NewMemoryCredentialStore()
	creds.Seed(domainauth.Credentials{AccessToken: "T1", RefreshToken: "R1"})

	sess := session.NewStore()
	sess.Set(domainauth.Identity{UserID: "u1"}, domainauth.RoleAdmin,
		domainauth.DefaultPermissions(domainauth.RoleAdmin))

	client, err := transport.NewClient(transport.Options{
		BaseURL:     server.URL,
		Variant:     config.AuthVariantToken,
		Credentials: creds,
		Session:     sess,
	})
	require.NoError(t, err)

	return serviceFixture{client: client, creds: creds, session: sess}
}

// newCookieServiceFixture builds a cookie-variant client against the given
// handler. Nothing is persisted client-side; the jar carries the session.
func newCookieServiceFixture(t *testing.T, handler http.Handler) serviceFixture {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sess := session.NewStore()
	client, err := transport.NewClient(transport.Options{
		BaseURL: server.URL,
		Variant: config.AuthVariantCookie,
		Session: sess,
	})
	require.NoError(t, err)

	return serviceFixture{client: client, creds: authmocks.NewMemoryCredentialStore(), session: sess}
}
