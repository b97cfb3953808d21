package config

import "time"

// APIConfig contains Merry Maker API endpoint configuration.
type APIConfig struct {
	// BaseURL is the base URL of the Merry Maker API (e.g., "https://mmk.example.com/api").
	BaseURL string `env:"MMK_API_BASE_URL" envDefault:"http://localhost:8080/api"`

	// Timeout is the per-request timeout for the underlying HTTP client.
	Timeout time.Duration `env:"MMK_API_TIMEOUT" envDefault:"30s"`

	// UserAgent is sent with every request. Useful for server-side request attribution.
	UserAgent string `env:"MMK_API_USER_AGENT" envDefault:"mmk-ui-client"`
}

// Sanitize applies guardrails to API configuration values.
func (a *APIConfig) Sanitize() {
	if a.Timeout <= 0 {
		a.Timeout = 30 * time.Second
	}
	if a.UserAgent == "" {
		a.UserAgent = "mmk-ui-client"
	}
}
