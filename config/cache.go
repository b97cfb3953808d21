package config

import (
	"fmt"
	"strings"
	"time"
)

// CacheBackend selects where list/get responses are cached.
type CacheBackend string

const (
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendRedis  CacheBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for CacheBackend.
func (b *CacheBackend) UnmarshalText(text []byte) error {
	value := strings.ToLower(string(text))
	switch value {
	case "memory", "redis":
		*b = CacheBackend(value)
		return nil
	default:
		return fmt.Errorf("invalid CacheBackend: %q (valid options: memory, redis)", value)
	}
}

// CacheConfig contains response cache configuration.
type CacheConfig struct {
	// Enabled turns read-through caching of list/get responses on.
	Enabled bool `env:"CACHE_ENABLED" envDefault:"true"`

	// Backend selects the cache implementation.
	Backend CacheBackend `env:"CACHE_BACKEND" envDefault:"memory"`

	// TTL is how long cached responses stay fresh.
	TTL time.Duration `env:"CACHE_TTL" envDefault:"30s"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
}

// RedisConfig contains Redis configuration, used by the redis cache backend
// and the shared credential store.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}
