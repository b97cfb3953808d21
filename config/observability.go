package config

// ObservabilityConfig contains client metrics configuration.
type ObservabilityConfig struct {
	// StatsD sink for request/refresh metrics. Disabled unless an address is set.
	StatsdEnabled bool   `env:"STATSD_ENABLED" envDefault:"false"`
	StatsdAddress string `env:"STATSD_ADDRESS" envDefault:""`
	StatsdPrefix  string `env:"STATSD_PREFIX"  envDefault:"mmk_client"`
}

// Sanitize applies guardrails to observability configuration values.
func (o *ObservabilityConfig) Sanitize() {
	if o.StatsdAddress == "" {
		o.StatsdEnabled = false
	}
	if o.StatsdPrefix == "" {
		o.StatsdPrefix = "mmk_client"
	}
}
