package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"RESERVATION_HTTP_PORT",
	"RESERVATION_SQLITE_PATH",
	"RESERVATION_TIMEZONE",
	"RESERVATION_SEED_FILE",
	"RESERVATION_LOG_LEVEL",
	"RESERVATION_BUSY_TIMEOUT",
	"RESERVATION_REQUEST_TIMEOUT",
}

// clearEnv unsets every key and restores the previous values after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.HTTPPort)
		assert.Equal(t, "reservations.db", cfg.SQLitePath)
		require.NotNil(t, cfg.Location)
		assert.Equal(t, "Asia/Seoul", cfg.Location.String())
		assert.Empty(t, cfg.SeedFile)
		assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
		assert.Equal(t, 5*time.Second, cfg.BusyTimeout)
		assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	})

	t.Run("reads overrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESERVATION_HTTP_PORT", "9090")
		t.Setenv("RESERVATION_SQLITE_PATH", "/var/lib/rooms/rooms.db")
		t.Setenv("RESERVATION_TIMEZONE", "UTC")
		t.Setenv("RESERVATION_SEED_FILE", "seed.toml")
		t.Setenv("RESERVATION_LOG_LEVEL", "debug")
		t.Setenv("RESERVATION_BUSY_TIMEOUT", "250ms")
		t.Setenv("RESERVATION_REQUEST_TIMEOUT", "3s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.HTTPPort)
		assert.Equal(t, "/var/lib/rooms/rooms.db", cfg.SQLitePath)
		assert.Equal(t, time.UTC, cfg.Location)
		assert.Equal(t, "seed.toml", cfg.SeedFile)
		assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
		assert.Equal(t, 250*time.Millisecond, cfg.BusyTimeout)
		assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESERVATION_HTTP_PORT", "not-a-number")
		t.Setenv("RESERVATION_TIMEZONE", "Mars/Olympus")
		t.Setenv("RESERVATION_BUSY_TIMEOUT", "-1s")

		_, err := Load()
		require.Error(t, err)
		assert.Equal(t,
			"invalid environment variable values: RESERVATION_HTTP_PORT, RESERVATION_TIMEZONE, RESERVATION_BUSY_TIMEOUT",
			err.Error())
	})

	t.Run("errors when the database path is blank", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESERVATION_SQLITE_PATH", "   ")

		_, err := Load()
		require.Error(t, err)
		assert.Equal(t, "required environment variables are empty: RESERVATION_SQLITE_PATH", err.Error())
	})
}

func TestLoadWithFile(t *testing.T) {
	t.Run("reads values from the env file", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("RESERVATION_HTTP_PORT=7070\nRESERVATION_LOG_LEVEL=warn\n"), 0o600))
		t.Cleanup(func() {
			_ = os.Unsetenv("RESERVATION_HTTP_PORT")
			_ = os.Unsetenv("RESERVATION_LOG_LEVEL")
		})

		cfg, err := LoadWithFile(path)
		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.HTTPPort)
		assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	})

	t.Run("process environment wins", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESERVATION_HTTP_PORT", "6060")
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("RESERVATION_HTTP_PORT=7070\n"), 0o600))

		cfg, err := LoadWithFile(path)
		require.NoError(t, err)
		assert.Equal(t, 6060, cfg.HTTPPort)
	})

	t.Run("missing file is ignored", func(t *testing.T) {
		clearEnv(t)
		cfg, err := LoadWithFile(filepath.Join(t.TempDir(), "absent.env"))
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.HTTPPort)
	})
}
