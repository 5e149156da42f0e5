package config

import (
	"reflect"
	"strings"

	"achievement-hub/core/database"
	"achievement-hub/core/enrich"
	"achievement-hub/core/library"
	"achievement-hub/core/logger"
	"achievement-hub/core/server"
	"achievement-hub/core/storage"
	"achievement-hub/feature/archive"
	"achievement-hub/feature/providers/retro"
	"achievement-hub/feature/providers/steam"
	"achievement-hub/feature/providers/xbox"
	hubsync "achievement-hub/feature/sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Library holds the document location and autosave period.
	Library library.Config `mapstructure:"library"`
	// Sync holds concurrency and scheduling of sync runs.
	Sync hubsync.Config `mapstructure:"sync"`
	// Steam, Retro and Xbox hold the platform credentials. A platform without
	// credentials is skipped.
	Steam steam.Config `mapstructure:"steam"`
	Retro retro.Config `mapstructure:"retro"`
	Xbox  xbox.Config  `mapstructure:"xbox"`
	// Enrich holds the completion time lookup settings.
	Enrich enrich.Config `mapstructure:"enrich"`
	// Cache holds the optional Redis cache in front of the lookup.
	Cache enrich.CacheConfig `mapstructure:"cache"`
	// Database holds the optional archive database.
	Database database.Config `mapstructure:"database"`
	// Archive holds the archive mirror settings.
	Archive archive.Config `mapstructure:"archive"`
	// Storage holds the optional backup object store.
	Storage storage.Config `mapstructure:"storage"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. STEAM_API_KEY -> steam.api_key)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
