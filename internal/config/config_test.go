package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TPLANS_HOME", home)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "tplans.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(home, "session.json"), cfg.SessionFile)
	assert.Equal(t, 720*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.LogUseCases)
}

func TestLoad_EnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TPLANS_HOME", home)
	t.Setenv("TPLANS_DB_PATH", filepath.Join(home, "other.db"))
	t.Setenv("TPLANS_TOKEN_TTL", "1h")
	t.Setenv("TPLANS_POLL_INTERVAL", "2s")
	t.Setenv("TPLANS_LOG_LEVEL", "debug")
	t.Setenv("TPLANS_LOG_USE_CASES", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "other.db"), cfg.DBPath)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogUseCases)
}

func TestLoad_ConfigFile(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "tplans.env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_FORMAT=json\nTOKEN_TTL=2h\n"), 0600))
	t.Setenv("TPLANS_HOME", home)
	t.Setenv("TPLANS_CONFIG", path)
	t.Setenv("TPLANS_TOKEN_TTL", "3h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 3*time.Hour, cfg.TokenTTL, "environment wins over the file")
}

func TestLoad_InvalidFormat(t *testing.T) {
	t.Setenv("TPLANS_HOME", t.TempDir())
	t.Setenv("TPLANS_LOG_FORMAT", "xml")

	_, err := Load()
	assert.Error(t, err)
}

func TestResolveJWTSecret(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())

	first, err := cfg.ResolveJWTSecret()
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := cfg.ResolveJWTSecret()
	require.NoError(t, err)
	assert.Equal(t, first, second, "generated secret is persisted")

	cfg.JWTSecret = "explicit"
	explicit, err := cfg.ResolveJWTSecret()
	require.NoError(t, err)
	assert.Equal(t, []byte("explicit"), explicit)
}
