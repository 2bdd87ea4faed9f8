package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":5000", cfg.ServerAddress)
		assert.Equal(t, "attendsync.db", cfg.DatabasePath)
		assert.Equal(t, "zk", cfg.Device.Driver)
		assert.Equal(t, "GMT", cfg.Sync.Timezone)
		assert.Equal(t, 15, cfg.Sync.IntervalMinutes)
		assert.False(t, cfg.Sync.AutoStart)
		assert.False(t, cfg.Sync.SortLog)
		assert.Equal(t, "newest", cfg.Sync.CheckOutPolicy)
		assert.Equal(t, "X-API-Key", cfg.Security.APIKeyHeader)
		assert.False(t, cfg.UsePostgres())
	})

	t.Run("config file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			"serverAddress": ":8080",
			"sync": {"timezone": "Asia/Karachi", "intervalMinutes": 5, "sortLog": true}
		}`), 0o600))
		t.Setenv("CONFIG_PATH", path)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.ServerAddress)
		assert.Equal(t, "Asia/Karachi", cfg.Sync.Timezone)
		assert.Equal(t, 5, cfg.Sync.IntervalMinutes)
		assert.True(t, cfg.Sync.SortLog)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))
		t.Setenv("SERVER_ADDRESS", ":9999")
		t.Setenv("SYNC_TIMEZONE", "Asia/Jakarta")
		t.Setenv("SYNC_INTERVAL_MINUTES", "30")
		t.Setenv("SYNC_AUTO_START", "true")
		t.Setenv("SYNC_CHECKOUT_POLICY", "oldest")
		t.Setenv("DATABASE_URL", "postgres://localhost/attendsync")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":9999", cfg.ServerAddress)
		assert.Equal(t, "Asia/Jakarta", cfg.Sync.Timezone)
		assert.Equal(t, 30, cfg.Sync.IntervalMinutes)
		assert.True(t, cfg.Sync.AutoStart)
		assert.Equal(t, "oldest", cfg.Sync.CheckOutPolicy)
		assert.True(t, cfg.UsePostgres())
	})

	t.Run("malformed config file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))
		t.Setenv("CONFIG_PATH", path)

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("non-positive interval is ignored", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))
		t.Setenv("SYNC_INTERVAL_MINUTES", "-3")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 15, cfg.Sync.IntervalMinutes)
	})
}
