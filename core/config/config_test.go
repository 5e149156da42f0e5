package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"achievement-hub/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "data/library.json", cfg.Library.Path)
	assert.Equal(t, 60, cfg.Library.AutosaveSeconds)
	assert.Equal(t, 4, cfg.Sync.ProviderConcurrency)
	assert.Equal(t, 5, cfg.Sync.EnrichConcurrency)
	assert.Equal(t, "https://api.steampowered.com", cfg.Steam.BaseURL)
	assert.Equal(t, "https://retroachievements.org/API", cfg.Retro.BaseURL)
	assert.Equal(t, "https://xbl.io/api/v2", cfg.Xbox.BaseURL)
	assert.True(t, cfg.Enrich.Enabled)
	assert.Equal(t, 0.75, cfg.Enrich.MinSimilarity)
	assert.Equal(t, 168, cfg.Cache.TTLHours)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Archive.AutoMigrate)
	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, 10, cfg.Storage.Retain)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "STEAM_API_KEY=abc\nSTEAM_ID=gaben\nSYNC_REFRESH_INTERVAL_MINUTES=0\nDATABASE_ENABLED=true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"STEAM_API_KEY", "STEAM_ID", "SYNC_REFRESH_INTERVAL_MINUTES", "DATABASE_ENABLED"} {
			_ = os.Unsetenv(k)
		}
	})

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.Steam.APIKey)
	assert.Equal(t, "gaben", cfg.Steam.ID)
	assert.Zero(t, cfg.Sync.RefreshInterval())
	assert.True(t, cfg.Database.Enabled)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("RETRO_USER", "player")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "player", cfg.Retro.User)
}
