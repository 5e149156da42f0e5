package storage

// Config holds configuration for the backup object store.
type Config struct {
	// Enabled turns library backups on.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Endpoint is the host of the S3 compatible service, with or without scheme.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket holds the backups.
	Bucket string `mapstructure:"bucket" default:"achievement-hub"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// Prefix is prepended to every object key.
	Prefix string `mapstructure:"prefix" default:"library"`
	// Retain is how many timestamped snapshots are kept. Zero keeps only the latest copy.
	Retain int `mapstructure:"retain" default:"10"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
