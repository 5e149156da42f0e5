package sync

import "time"

// Config holds configuration for sync runs.
type Config struct {
	// ProviderConcurrency bounds how many providers are queried at once.
	ProviderConcurrency int `mapstructure:"provider_concurrency" default:"4"`
	// EnrichConcurrency bounds concurrent estimate lookups.
	EnrichConcurrency int `mapstructure:"enrich_concurrency" default:"5"`
	// EnrichFreshnessHours is how long an estimate is considered fresh.
	EnrichFreshnessHours int `mapstructure:"enrich_freshness_hours" default:"168"`
	// RefreshIntervalMinutes is the period of background refreshes. Zero disables them.
	RefreshIntervalMinutes int `mapstructure:"refresh_interval_minutes" default:"30"`
	// RequestTimeoutSeconds bounds a single provider API request.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" default:"30"`
}

// Freshness returns the estimate freshness window.
func (c Config) Freshness() time.Duration {
	if c.EnrichFreshnessHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.EnrichFreshnessHours) * time.Hour
}

// RefreshInterval returns the background refresh period, zero when disabled.
func (c Config) RefreshInterval() time.Duration {
	if c.RefreshIntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(c.RefreshIntervalMinutes) * time.Minute
}

// RequestTimeout returns the per-request timeout for provider clients.
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
