package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-ui-client/config"
	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
	apierrors "github.com/target/mmk-ui-client/internal/errors"
	authmocks "github.com/target/mmk-ui-client/internal/mocks/auth"
	"github.com/target/mmk-ui-client/internal/session"
)

// fakeAPI is a minimal Merry Maker API double: /sites accepts only the
// current token, /auth/refresh rotates it.
type fakeAPI struct {
	mu           sync.Mutex
	validToken   string
	nextToken    string
	refreshCalls atomic.Int64
	refreshDelay time.Duration
	refreshFails bool
	seenAuth     []string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		if f.refreshDelay > 0 {
			time.Sleep(f.refreshDelay)
		}
		if f.refreshFails {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "refresh token revoked"})
			return
		}
		f.mu.Lock()
		f.validToken = f.nextToken
		token := f.validToken
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  token,
			"refresh_token": "rotated-refresh",
			"expires_in":    900,
		})
	})
	mux.HandleFunc("GET /sites", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		f.mu.Lock()
		f.seenAuth = append(f.seenAuth, auth)
		valid := "Bearer " + f.validToken
		f.mu.Unlock()
		if auth != valid {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "s1", "name": "example"}})
	})
	return mux
}

func (f *fakeAPI) authHeaders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seenAuth...)
}

type hookRecorder struct {
	loggedOut atomic.Int64
	forbidden atomic.Int64
	mu        sync.Mutex
	notices   []string
	lastPath  string
}

func (h *hookRecorder) hooks() Hooks {
	return Hooks{
		LoggedOut: func(string) { h.loggedOut.Add(1) },
		Forbidden: func(path string) {
			h.forbidden.Add(1)
			h.mu.Lock()
			h.lastPath = path
			h.mu.Unlock()
		},
		Notice: func(msg string) {
			h.mu.Lock()
			h.notices = append(h.notices, msg)
			h.mu.Unlock()
		},
	}
}

func (h *hookRecorder) noticeList() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.notices...)
}

type clientFixture struct {
	client *Client
	creds  *authmocks.MemoryCredentialStore
	sess   *session.Store
	hooks  *hookRecorder
}

func newTokenClient(t *testing.T, baseURL string) clientFixture {
	t.Helper()

	creds := authmocks.NewMemoryCredentialStore()
	creds.Seed(domainauth.Credentials{AccessToken: "T1", RefreshToken: "R1"})

	sess := session.NewStore()
	sess.Set(domainauth.Identity{UserID: "u1"}, domainauth.RoleUser, []string{"sites:read"})

	hooks := &hookRecorder{}
	client, err := NewClient(Options{
		BaseURL:     baseURL,
		Variant:     config.AuthVariantToken,
		Credentials: creds,
		Session:     sess,
		Hooks:       hooks.hooks(),
	})
	require.NoError(t, err)

	return clientFixture{client: client, creds: creds, sess: sess, hooks: hooks}
}

func TestNewClient_Validation(t *testing.T) {
	sess := session.NewStore()
	creds := authmocks.NewMemoryCredentialStore()

	_, err := NewClient(Options{BaseURL: "not a url\x7f", Session: sess, Credentials: creds})
	require.Error(t, err)

	_, err = NewClient(Options{BaseURL: "/relative", Session: sess, Credentials: creds})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute")

	_, err = NewClient(Options{BaseURL: "http://localhost:8080/api", Credentials: creds})
	require.Error(t, err)

	_, err = NewClient(Options{BaseURL: "http://localhost:8080/api", Session: sess})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credential store")
}

func TestClient_SuccessPassesThroughUntouched(t *testing.T) {
	api := &fakeAPI{validToken: "T1", nextToken: "T2"}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	fx := newTokenClient(t, srv.URL)

	var sites []map[string]string
	err := fx.client.Get(context.Background(), "/sites", nil, &sites)

	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "s1", sites[0]["id"])
	assert.Equal(t, int64(0), api.refreshCalls.Load())
	assert.Empty(t, fx.hooks.noticeList())
	assert.True(t, fx.sess.Authenticated())
}

func TestClient_Concurrent401sShareOneRefresh(t *testing.T) {
	const callers = 8

	api := &fakeAPI{validToken: "T0", nextToken: "T2", refreshDelay: 100 * time.Millisecond}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	fx := newTokenClient(t, srv.URL) // seeded with T1, so every request 401s first

	start := make(chan struct{})
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			var out []map[string]string
			errs <- fx.client.Get(context.Background(), "/sites", nil, &out)
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// Exactly one refresh call despite N concurrent 401s.
	assert.Equal(t, int64(1), api.refreshCalls.Load())

	// Credentials were persisted before any replay: every authorized
	// request carried the rotated token, never the stale one.
	stored, ok := fx.creds.Stored()
	require.True(t, ok)
	assert.Equal(t, "T2", stored.AccessToken)
	assert.Equal(t, "rotated-refresh", stored.RefreshToken)
	for _, auth := range api.authHeaders() {
		if auth != "Bearer T1" { // initial attempts with the stale token
			assert.Equal(t, "Bearer T2", auth)
		}
	}
}

func TestClient_RefreshFailureRejectsAllWaiters(t *testing.T) {
	const callers = 5

	api := &fakeAPI{validToken: "T0", refreshFails: true, refreshDelay: 50 * time.Millisecond}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	fx := newTokenClient(t, srv.URL)

	start := make(chan struct{})
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs <- fx.client.Get(context.Background(), "/sites", nil, nil)
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.Error(t, err)
		assert.True(t, apierrors.IsRefreshFailed(err), "expected refresh_failed, got %v", err)
	}

	assert.Equal(t, int64(1), api.refreshCalls.Load())
	assert.Equal(t, int64(1), fx.hooks.loggedOut.Load())
	assert.False(t, fx.sess.Authenticated())
	_, ok := fx.creds.Stored()
	assert.False(t, ok)

	// No further refresh network call until a new login: the next request
	// fails fast on the missing refresh credential.
	err := fx.client.Get(context.Background(), "/sites", nil, nil)
	require.Error(t, err)
	assert.True(t, apierrors.IsRefreshFailed(err))
	assert.Equal(t, int64(1), api.refreshCalls.Load())
}

func TestClient_ReplayedRequestIsNeverRefreshedTwice(t *testing.T) {
	refreshCalls := atomic.Int64{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "T2"})
	})
	// Endpoint that never accepts any credential.
	mux.HandleFunc("GET /sites", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fx := newTokenClient(t, srv.URL)

	err := fx.client.Get(context.Background(), "/sites", nil, nil)

	require.Error(t, err)
	assert.True(t, apierrors.IsAuthExpired(err))
	assert.Equal(t, int64(1), refreshCalls.Load())
	assert.False(t, fx.sess.Authenticated())
}

func TestClient_ForbiddenNeverTriggersRefresh(t *testing.T) {
	refreshCalls := atomic.Int64{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	mux.HandleFunc("GET /admin/secrets", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "admin role required"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fx := newTokenClient(t, srv.URL)

	err := fx.client.Get(context.Background(), "/admin/secrets", nil, nil)

	require.Error(t, err)
	assert.True(t, apierrors.IsForbidden(err))
	assert.Equal(t, int64(0), refreshCalls.Load())
	assert.Equal(t, int64(1), fx.hooks.forbidden.Load())
	assert.Equal(t, "/admin/secrets", fx.hooks.lastPath)
	// Permission denial is not a token problem: the user stays logged in.
	assert.True(t, fx.sess.Authenticated())
	assert.Empty(t, fx.hooks.noticeList())
}

func TestClient_GenericFailureSurfacesSingleNotice(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sites", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "scan backlog exceeded"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fx := newTokenClient(t, srv.URL)

	err := fx.client.Get(context.Background(), "/sites", nil, nil)

	require.Error(t, err)
	assert.True(t, apierrors.IsRequestFailed(err))
	assert.Equal(t, 500, apierrors.GetStatus(err))
	assert.Equal(t, []string{"scan backlog exceeded"}, fx.hooks.noticeList())
}

func TestClient_NotFoundIsTyped(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sites/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "site not found"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fx := newTokenClient(t, srv.URL)

	err := fx.client.Get(context.Background(), "/sites/missing", nil, nil)

	require.Error(t, err)
	assert.True(t, apierrors.IsNotFound(err))
}

func TestClient_NoticesSuppressedForAuthEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "idp unavailable"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fx := newTokenClient(t, srv.URL)

	err := fx.client.Post(context.Background(), "/auth/login", map[string]string{"username": "u"}, nil)

	require.Error(t, err)
	assert.True(t, apierrors.IsRequestFailed(err))
	assert.Empty(t, fx.hooks.noticeList())
}

func TestClient_AuthEndpoint401IsIrrecoverable(t *testing.T) {
	refreshCalls := atomic.Int64{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "bad credentials"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fx := newTokenClient(t, srv.URL)

	err := fx.client.Post(context.Background(), "/auth/login", map[string]string{"username": "u"}, nil)

	require.Error(t, err)
	assert.True(t, apierrors.IsAuthExpired(err))
	assert.Equal(t, int64(0), refreshCalls.Load())
	assert.Equal(t, int64(1), fx.hooks.loggedOut.Load())
	assert.False(t, fx.sess.Authenticated())
	assert.Empty(t, fx.hooks.noticeList())
}

func TestClient_LogoutClearsAuthorizationHeader(t *testing.T) {
	var lastAuth atomic.Value
	lastAuth.Store("unset")
	mux := http.NewServeMux()
	mux.HandleFunc("GET /public", func(w http.ResponseWriter, r *http.Request) {
		lastAuth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fx := newTokenClient(t, srv.URL)

	require.NoError(t, fx.client.Get(context.Background(), "/public", nil, nil))
	assert.Equal(t, "Bearer T1", lastAuth.Load())

	require.NoError(t, fx.creds.Delete(context.Background()))
	fx.sess.Clear()

	require.NoError(t, fx.client.Get(context.Background(), "/public", nil, nil))
	assert.Equal(t, "", lastAuth.Load())
}

func TestClient_CookieVariant401RequiresLogin(t *testing.T) {
	refreshCalls := atomic.Int64{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	mux.HandleFunc("GET /sites", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sess := session.NewStore()
	sess.Set(domainauth.Identity{UserID: "u1"}, domainauth.RoleUser, nil)
	hooks := &hookRecorder{}
	client, err := NewClient(Options{
		BaseURL: srv.URL,
		Variant: config.AuthVariantCookie,
		Session: sess,
		Hooks:   hooks.hooks(),
	})
	require.NoError(t, err)

	err = client.Get(context.Background(), "/sites", nil, nil)

	require.Error(t, err)
	assert.True(t, apierrors.IsAuthExpired(err))
	assert.Equal(t, int64(0), refreshCalls.Load())
	assert.Equal(t, int64(1), hooks.loggedOut.Load())
	assert.False(t, sess.Authenticated())
}

func TestClient_QueryParametersEncoded(t *testing.T) {
	var gotQuery atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sites", func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.RawQuery)
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fx := newTokenClient(t, srv.URL)

	q := url.Values{}
	q.Set("limit", "25")
	q.Set("q", "checkout page")
	require.NoError(t, fx.client.Get(context.Background(), "/sites", q, nil))

	assert.Equal(t, "limit=25&q=checkout+page", gotQuery.Load())
}
