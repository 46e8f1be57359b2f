package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, uint16(8080), cfg.HTTP.Port)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTP.WriteTimeout)

	assert.Equal(t, "zap", cfg.Logger.Logger)
	assert.Equal(t, "info", cfg.Logger.Level)

	assert.Equal(t, 10, cfg.RateLimiter.MaxRatePerSecond)
	assert.Equal(t, 20, cfg.RateLimiter.MaxBurst)

	assert.Equal(t, 2500*time.Millisecond, cfg.Rooms.DestroyGraceDelay)
	assert.Equal(t, int64(50*1024*1024), cfg.Rooms.MaxFrameBytes)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte(`
http:
  host: "127.0.0.1"
  port: 9999
  allowed_origins:
    - "https://chat.example.com"
logger:
  logger: "zerolog"
  level: "debug"
rooms:
  destroy_grace_delay: 1s
  max_frame_bytes: 1048576
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.HTTP.Host)
	assert.Equal(t, uint16(9999), cfg.HTTP.Port)
	assert.Equal(t, []string{"https://chat.example.com"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "zerolog", cfg.Logger.Logger)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, time.Second, cfg.Rooms.DestroyGraceDelay)
	assert.Equal(t, int64(1048576), cfg.Rooms.MaxFrameBytes)

	// Keys the file leaves out still default.
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 20, cfg.RateLimiter.MaxBurst)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("LOGGER_LEVEL", "warn")
	t.Setenv("ROOM_DESTROY_GRACE_DELAY_MS", "500")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, uint16(7070), cfg.HTTP.Port)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, 500*time.Millisecond, cfg.Rooms.DestroyGraceDelay)
}

func TestEnvOverridesBeatFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  port: 9999\n"), 0o600))

	t.Setenv("HTTP_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint16(7070), cfg.HTTP.Port)
}
