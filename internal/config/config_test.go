package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, DefaultBackendURL, cfg.BackendURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5.0, cfg.RateLimit)
	assert.Equal(t, 10, cfg.RateBurst)
	assert.False(t, cfg.Auth.SignedIn())
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
	assert.Equal(t, filepath.Join(dir, "entries.db"), cfg.DatabasePath())
	assert.Equal(t, filepath.Join(dir, "logs", "moodlog.log"), cfg.LogPath())
}

func TestSaveAndReloadAuth(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	cfg.Auth = AuthConfig{
		IDToken:      "id-token",
		RefreshToken: "refresh-token",
		TokenExpiry:  1700000000,
		UserID:       "uid-1",
		Email:        "sam@example.com",
	}
	require.NoError(t, Save(cfg))

	info, err := os.Stat(cfg.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.Auth, reloaded.Auth)
	assert.True(t, reloaded.Auth.SignedIn())

	require.NoError(t, ClearAuth(reloaded))
	again, err := Load(dir)
	require.NoError(t, err)
	assert.False(t, again.Auth.SignedIn())
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MOODLOG_BACKEND_URL", "https://journal.example.com")
	t.Setenv("MOODLOG_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://journal.example.com", cfg.BackendURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"bad scheme", func(c *Config) { c.BackendURL = "ftp://x" }, true},
		{"no host", func(c *Config) { c.BackendURL = "http://" }, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"zero rate", func(c *Config) { c.RateLimit = 0 }, true},
		{"zero burst", func(c *Config) { c.RateBurst = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{BackendURL: DefaultBackendURL, LogLevel: "info", RateLimit: 5, RateBurst: 10}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
