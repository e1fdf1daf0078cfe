package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "./data/pennywise.db", cfg.SQLitePath)
	assert.Equal(t, TransferModeIgnore, cfg.TransferMode)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, 64, cfg.EventBuffer)
	assert.True(t, cfg.SeedDefaults)
	assert.Empty(t, cfg.AdminKey)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TRANSFER_MODE", "MOVE")
	t.Setenv("TIMEZONE", "Europe/Rome")
	t.Setenv("ADMIN_KEY", "s3cret")
	t.Setenv("EVENT_BUFFER", "-1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, TransferModeMove, cfg.TransferMode)
	assert.Equal(t, "Europe/Rome", cfg.Location.String())
	assert.Equal(t, "s3cret", cfg.AdminKey)
	assert.Equal(t, 64, cfg.EventBuffer)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"driver", "DB_DRIVER", "mysql"},
		{"transfer mode", "TRANSFER_MODE", "split"},
		{"timezone", "TIMEZONE", "Mars/Olympus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pennywise.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_driver: postgres\ndb_name: books\nseed_defaults: false\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "books", cfg.DBName)
	assert.False(t, cfg.SeedDefaults)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
