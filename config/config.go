package config

// AppConfig is the main client configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: API endpoint configuration
//   - auth.go: Authentication configuration
//   - cache.go: Response cache configuration
//   - observability.go: Metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior (verbose logging, mock auth defaults).
	IsDev bool `env:"DEV" envDefault:"false"`

	// API endpoint configuration
	API APIConfig

	// Authentication configuration
	Auth AuthConfig

	// Response cache configuration
	Cache CacheConfig
	Redis RedisConfig `envPrefix:"REDIS_"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Auth.Sanitize()
	c.Cache.Sanitize()
	c.Observability.Sanitize()
}
