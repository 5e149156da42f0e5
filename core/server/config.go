package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables authentication.
	ApiKey string `mapstructure:"api_key" default:""`
	// ShutdownSeconds bounds the graceful shutdown, including the final library save.
	ShutdownSeconds int `mapstructure:"shutdown_seconds" default:"10"`
}

// Address returns the listen address for Port.
func (c Config) Address() string {
	return ":" + c.Port
}

// ShutdownTimeout returns the graceful shutdown budget.
func (c Config) ShutdownTimeout() time.Duration {
	if c.ShutdownSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ShutdownSeconds) * time.Second
}
