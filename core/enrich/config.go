package enrich

// Config holds configuration for the HowLongToBeat client.
type Config struct {
	// Enabled turns the enrichment pass on.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// BaseURL is the HowLongToBeat site root.
	BaseURL string `mapstructure:"base_url" default:"https://howlongtobeat.com"`
	// TimeoutSeconds bounds a single search request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
	// MinSimilarity is the lowest name similarity (0..1) accepted as a match.
	MinSimilarity float64 `mapstructure:"min_similarity" default:"0.75"`
}

// CacheConfig holds configuration for the Redis lookup cache.
// The cache is disabled when Addr is empty.
type CacheConfig struct {
	Addr     string `mapstructure:"addr" default:""`
	Password string `mapstructure:"password" default:""`
	DB       int    `mapstructure:"db" default:"0"`
	// TTLHours is how long an answer stays cached.
	TTLHours int `mapstructure:"ttl_hours" default:"168"`
}
