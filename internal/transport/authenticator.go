package transport

import (
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"

	"github.com/target/mmk-ui-client/internal/ports"
)

// bearerTransport attaches Authorization: Bearer headers to outgoing
// requests, reading the access token from the credential store at send time
// so replays after a refresh always carry the current token. A missing or
// unreadable credential leaves the request unauthenticated; the server
// rejects it if protection is required.
type bearerTransport struct {
	base  http.RoundTripper
	creds ports.CredentialStore
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	creds, err := t.creds.Load(req.Context())
	if err != nil || !creds.HasAccess() {
		return base.RoundTrip(req)
	}

	// Per RoundTripper contract the request must not be mutated in place.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	return base.RoundTrip(clone)
}

// newCookieJar builds the cookie jar for the cookie variant. The public
// suffix list keeps session cookies scoped the way a browser would. The jar
// is in-memory only: the server session lives as long as the process, and a
// new process signs in afresh.
func newCookieJar() (*cookiejar.Jar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}
