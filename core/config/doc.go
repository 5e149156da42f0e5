// Package config provides configuration management for the achievement hub.
//
// It loads a .env file when present and then reads environment variables through Viper.
// Defaults come from the `default` struct tags of each section, so every key is known to
// Viper and can be overridden by an environment variable (section and key joined by an
// underscore, e.g. SYNC_PROVIDER_CONCURRENCY).
//
// # Configuration Structure
//
//   - Server: HTTP port, API key, shutdown budget
//   - Log: level and format
//   - Library: document path and autosave period
//   - Sync: concurrency, enrichment freshness, background refresh period
//   - Steam, Retro, Xbox: platform credentials
//   - Enrich, Cache: completion time lookup and its optional Redis cache
//   - Database: optional archive database
//   - Storage: optional S3/MinIO backups
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
