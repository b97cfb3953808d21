package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"
	"time"

	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
	"github.com/target/mmk-ui-client/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.CredentialStore = (*MemoryCredentialStore)(nil)
	_ ports.LoginProvider   = (*MockLoginProvider)(nil)
)

// MemoryCredentialStore keeps the credential pair in process memory.
// Safe for concurrent use; records call counts for assertions.
type MemoryCredentialStore struct {
	mu    sync.Mutex
	creds domainauth.Credentials
	set   bool

	// Call counters for test assertions.
	Loads   int
	Saves   int
	Deletes int

	// SaveErr and LoadErr, when set, are returned by the corresponding calls.
	SaveErr error
	LoadErr error
}

// NewMemoryCredentialStore creates an empty in-memory store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

// Seed installs a credential pair without counting as a Save.
func (s *MemoryCredentialStore) Seed(creds domainauth.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	s.set = true
}

func (s *MemoryCredentialStore) Load(_ context.Context) (domainauth.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Loads++
	if s.LoadErr != nil {
		return domainauth.Credentials{}, s.LoadErr
	}
	if !s.set {
		return domainauth.Credentials{}, ports.ErrNoCredentials
	}
	return s.creds, nil
}

func (s *MemoryCredentialStore) Save(_ context.Context, creds domainauth.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saves++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.creds = creds
	s.set = true
	return nil
}

func (s *MemoryCredentialStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deletes++
	s.creds = domainauth.Credentials{}
	s.set = false
	return nil
}

// Stored returns the current pair and whether one is set.
func (s *MemoryCredentialStore) Stored() (domainauth.Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds, s.set
}

// MockLoginProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockLoginProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (ports.ExchangeResult, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	mu        sync.Mutex
	callCount int
}

// NewMockLoginProvider creates a MockLoginProvider with sensible defaults.
func NewMockLoginProvider() *MockLoginProvider {
	return &MockLoginProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: domainauth.Identity{
			UserID:    "mock-user-1",
			FirstName: "Mock",
			LastName:  "User",
			Email:     "mock.user@example.com",
			Groups:    []string{"mmk-users"},
		},
	}
}

func (m *MockLoginProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	state := m.StatePrefix + "-" + itoa(n)
	nonce := m.NoncePrefix + "-" + itoa(n)
	return m.AuthURL, state, nonce, nil
}

func (m *MockLoginProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (ports.ExchangeResult, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	return ports.ExchangeResult{Identity: m.DefaultUser, IDToken: "mock-id-token"}, nil
}

func itoa(n int) string {
	// Small positive counters only.
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// ExpiredCredentials returns a pair whose access token is stale, for tests
// that exercise the refresh flow.
func ExpiredCredentials() domainauth.Credentials {
	return domainauth.Credentials{
		AccessToken:  "expired-access",
		RefreshToken: "valid-refresh",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}
}
