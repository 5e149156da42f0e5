package steam

// Config holds configuration for the Steam Web API.
type Config struct {
	// APIKey is the Steam Web API key.
	APIKey string `mapstructure:"api_key" default:""`
	// ID is a 64-bit SteamID or a vanity (custom URL) name.
	ID string `mapstructure:"id" default:""`
	// BaseURL is the Web API root.
	BaseURL string `mapstructure:"base_url" default:"https://api.steampowered.com"`
	// Concurrency bounds per-title requests during a scan.
	Concurrency int `mapstructure:"concurrency" default:"4"`
}
