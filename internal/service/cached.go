// Package service exposes the typed feature surface of the client: auth
// orchestration and one service per API resource. Services call through
// the transport and never inspect raw responses; list and get reads go
// through the cache port when one is wired.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/target/mmk-ui-client/internal/ports"
)

// cachedFetch reads through the cache: a hit is decoded into out, a miss
// runs fetch and stores the result. Cache failures are logged and treated
// as misses so a dead cache never blocks reads.
func cachedFetch(
	ctx context.Context,
	cache ports.Cache,
	logger *slog.Logger,
	key string,
	ttl time.Duration,
	out any,
	fetch func() error,
) error {
	if cache == nil {
		return fetch()
	}

	if data, err := cache.Get(ctx, key); err != nil {
		logger.Warn("cache read failed", "key", key, "error", err)
	} else if len(data) > 0 {
		if err := json.Unmarshal(data, out); err == nil {
			return nil
		}
		// A corrupt entry falls through to a fresh fetch and is overwritten.
		logger.Warn("cache entry corrupt", "key", key)
	}

	if err := fetch(); err != nil {
		return err
	}

	data, err := json.Marshal(out)
	if err != nil {
		logger.Warn("cache encode failed", "key", key, "error", err)
		return nil
	}
	if err := cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("cache write failed", "key", key, "error", err)
	}
	return nil
}

// invalidatePrefix drops every cached entry under prefix, best effort.
func invalidatePrefix(ctx context.Context, cache ports.Cache, logger *slog.Logger, prefix string) {
	if cache == nil {
		return
	}
	if _, err := cache.DeletePrefix(ctx, prefix); err != nil {
		logger.Warn("cache invalidation failed", "prefix", prefix, "error", err)
	}
}
