package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/alexanderramin/tplans/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("bogus"))
}

func TestNew_JSONFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultConfig(t.TempDir())
	cfg.LogFormat = "json"
	cfg.LogLevel = "info"

	logger := New(cfg, &buf)
	logger.Debug("hidden")
	logger.Info("shown", "plan", "p1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "p1", entry["plan"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.DefaultConfig(t.TempDir()), &buf)
	logger.Info("below warn")
	logger.Warn("query failed")

	assert.NotContains(t, buf.String(), "below warn")
	assert.Contains(t, buf.String(), "msg=\"query failed\"")
}
