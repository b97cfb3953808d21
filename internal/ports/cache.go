package ports

import (
	"context"
	"time"
)

// Cache defines the interface for response caching operations.
// The services consume this port; implementations live in internal/cache.
type Cache interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// DeletePrefix removes all keys sharing a prefix, returning the count
	// removed. Used to invalidate a resource's cached lists on mutation.
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}
