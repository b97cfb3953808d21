// Package session holds the process-wide client session: the current user,
// its permission set, and the authenticated flag.
package session

import (
	"slices"
	"sync"

	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
)

// Store holds the current Session. It has no business logic of its own;
// mutations happen on login/logout and on irrecoverable auth failure.
// All methods are safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	sess domainauth.Session
}

// NewStore creates an empty, unauthenticated session store.
func NewStore() *Store {
	return &Store{sess: domainauth.Session{Role: domainauth.RoleGuest}}
}

// Set replaces the session with an authenticated one for the given identity.
func (s *Store) Set(user domainauth.Identity, role domainauth.Role, permissions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = domainauth.Session{
		User:          user,
		Role:          role,
		Permissions:   slices.Clone(permissions),
		Authenticated: true,
	}
}

// Clear resets the session to the unauthenticated guest state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = domainauth.Session{Role: domainauth.RoleGuest}
}

// Current returns a copy of the session.
func (s *Store) Current() domainauth.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.sess
	sess.Permissions = slices.Clone(s.sess.Permissions)
	return sess
}

// Authenticated reports whether a user is logged in.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.Authenticated
}
