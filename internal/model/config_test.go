package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Sync.PollIntervalSec)
	assert.Equal(t, 30, cfg.Sync.UnreadCheckIntervalSec)
	assert.Equal(t, "default", cfg.Display.Theme)
	assert.False(t, cfg.Display.BellAlerts)
	assert.Empty(t, cfg.API.BaseURL)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &AppConfig{
		API: APIConfig{BaseURL: "https://api.crowdbricks.example"},
		Sync: SyncConfig{
			PollIntervalSec:        15,
			UnreadCheckIntervalSec: 60,
		},
		Display: DisplayConfig{Theme: "dark", BellAlerts: true},
		LogFile: "/tmp/admin.log",
	}
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.API.BaseURL, loaded.API.BaseURL)
	assert.Equal(t, 15, loaded.Sync.PollIntervalSec)
	assert.Equal(t, 60, loaded.Sync.UnreadCheckIntervalSec)
	assert.Equal(t, "dark", loaded.Display.Theme)
	assert.True(t, loaded.Display.BellAlerts)
	assert.Equal(t, "/tmp/admin.log", loaded.LogFile)
}

func TestLoadConfigZeroIntervalsFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"sync:\n  poll_interval_sec: 0\n  unread_check_interval_sec: -5\n",
	), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Sync.PollIntervalSec)
	assert.Equal(t, 30, cfg.Sync.UnreadCheckIntervalSec)
}
