// Package credfile persists the credential pair as a JSON file on disk,
// the storage used by the CLI and by long-lived token-variant clients.
package credfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
	"github.com/target/mmk-ui-client/internal/ports"
)

// Store reads and writes one credential pair at a fixed path. Writes go
// through a temp file and rename so a crash never leaves a torn file.
type Store struct {
	mu   sync.Mutex
	path string
}

// DefaultPath returns the conventional credential location,
// $XDG_CONFIG_HOME/mmk/credentials.json (or the platform equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "mmk", "credentials.json"), nil
}

// New creates a Store at the given path. An empty path selects DefaultPath.
func New(path string) (*Store, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return &Store{path: path}, nil
}

// Path returns the file location the store operates on.
func (s *Store) Path() string { return s.path }

// fileShape is the on-disk layout. ExpiresAt is omitted when the server
// did not report a lifetime.
type fileShape struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

func (s *Store) Load(_ context.Context) (domainauth.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domainauth.Credentials{}, ports.ErrNoCredentials
		}
		return domainauth.Credentials{}, fmt.Errorf("read credential file: %w", err)
	}

	var shape fileShape
	if err := json.Unmarshal(data, &shape); err != nil {
		return domainauth.Credentials{}, fmt.Errorf("decode credential file: %w", err)
	}
	if shape.AccessToken == "" && shape.RefreshToken == "" {
		return domainauth.Credentials{}, ports.ErrNoCredentials
	}

	creds := domainauth.Credentials{
		AccessToken:  shape.AccessToken,
		RefreshToken: shape.RefreshToken,
	}
	if shape.ExpiresAt != nil {
		creds.ExpiresAt = *shape.ExpiresAt
	}
	return creds, nil
}

func (s *Store) Save(_ context.Context, creds domainauth.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shape := fileShape{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	}
	if !creds.ExpiresAt.IsZero() {
		at := creds.ExpiresAt
		shape.ExpiresAt = &at
	}

	data, err := json.MarshalIndent(shape, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	// Tokens must never be world-readable, and a partially written file
	// must never be observable at the final path.
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp credential file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("restrict credential file mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close credential file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}
