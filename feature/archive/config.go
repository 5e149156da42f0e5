package archive

// Config holds configuration for the archive mirror.
type Config struct {
	// AutoMigrate creates or updates the archive tables on start. When disabled the
	// existing schema is only checked.
	AutoMigrate bool `mapstructure:"auto_migrate" default:"true"`
	// BatchSize bounds the rows written per statement.
	BatchSize int `mapstructure:"batch_size" default:"200"`
}
