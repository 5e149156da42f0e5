package xbox

// Config holds configuration for the OpenXBL API.
type Config struct {
	// APIKey is the OpenXBL key sent as X-Authorization.
	APIKey string `mapstructure:"api_key" default:""`
	// BaseURL is the OpenXBL API root.
	BaseURL string `mapstructure:"base_url" default:"https://xbl.io/api/v2"`
	// Concurrency bounds per-title requests during a scan.
	Concurrency int `mapstructure:"concurrency" default:"2"`
}
