package retro

// Config holds configuration for the RetroAchievements Web API.
type Config struct {
	// APIKey is the user's Web API key.
	APIKey string `mapstructure:"api_key" default:""`
	// User is the RetroAchievements username.
	User string `mapstructure:"user" default:""`
	// BaseURL is the Web API root.
	BaseURL string `mapstructure:"base_url" default:"https://retroachievements.org/API"`
	// MediaURL prefixes relative image paths.
	MediaURL string `mapstructure:"media_url" default:"https://media.retroachievements.org"`
	// Concurrency bounds per-title requests during a scan.
	Concurrency int `mapstructure:"concurrency" default:"2"`
}
