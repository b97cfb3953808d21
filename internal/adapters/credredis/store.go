// Package credredis persists the credential pair in Redis, the storage
// used when many workers share one identity and must observe a rotation
// made by any of them.
package credredis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
	"github.com/target/mmk-ui-client/internal/ports"
)

const defaultPrefix = "credentials:"

// Store keeps one credential pair per profile under a prefixed key.
// Entries have no TTL: the refresh token outlives every access token, so
// only an explicit Delete (logout or irrecoverable refresh) removes them.
type Store struct {
	client  redis.UniversalClient
	profile string
	prefix  string
}

// New creates a Store for the given profile name.
func New(client redis.UniversalClient, profile string) (*Store, error) {
	if profile == "" {
		return nil, errors.New("profile cannot be empty")
	}
	return &Store{client: client, profile: profile, prefix: defaultPrefix}, nil
}

// NewWithPrefix creates a Store with a custom key prefix.
func NewWithPrefix(client redis.UniversalClient, profile, prefix string) (*Store, error) {
	store, err := New(client, profile)
	if err != nil {
		return nil, err
	}
	store.prefix = prefix
	return store, nil
}

func (s *Store) key() string { return s.prefix + s.profile }

type record struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

func (s *Store) Load(ctx context.Context) (domainauth.Credentials, error) {
	data, err := s.client.Get(ctx, s.key()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Credentials{}, ports.ErrNoCredentials
		}
		return domainauth.Credentials{}, fmt.Errorf("redis get: %w", err)
	}

	var rec record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return domainauth.Credentials{}, fmt.Errorf("unmarshal credentials: %w", err)
	}

	creds := domainauth.Credentials{
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
	}
	if rec.ExpiresAt != nil {
		creds.ExpiresAt = *rec.ExpiresAt
	}
	return creds, nil
}

func (s *Store) Save(ctx context.Context, creds domainauth.Credentials) error {
	rec := record{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	}
	if !creds.ExpiresAt.IsZero() {
		at := creds.ExpiresAt
		rec.ExpiresAt = &at
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	return s.client.Set(ctx, s.key(), data, 0).Err()
}

func (s *Store) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.key()).Err()
}
