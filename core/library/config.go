package library

import "time"

// Config holds configuration for the library document.
type Config struct {
	// Path is the location of the JSON document.
	Path string `mapstructure:"path" default:"data/library.json"`
	// AutosaveSeconds is the period of background saves. Zero disables them.
	AutosaveSeconds int `mapstructure:"autosave_seconds" default:"60"`
}

// AutosaveInterval returns the autosave period, zero when disabled.
func (c Config) AutosaveInterval() time.Duration {
	if c.AutosaveSeconds <= 0 {
		return 0
	}
	return time.Duration(c.AutosaveSeconds) * time.Second
}
