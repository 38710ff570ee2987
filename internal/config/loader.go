package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the reservation service.
type Config struct {
	HTTPPort       int
	SQLitePath     string
	Location       *time.Location
	SeedFile       string
	LogLevel       slog.Level
	BusyTimeout    time.Duration
	RequestTimeout time.Duration
}

// DefaultEnvFile is read by LoadWithFile when no path is given.
const DefaultEnvFile = ".env"

// LoadWithFile loads variables from an env file into the process environment and
// then calls Load. Variables already set in the environment win over the file. A
// missing file is not an error.
func LoadWithFile(path string) (Config, error) {
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return Load()
}

// Load parses configuration values from the current process environment.
//
// Optional values fall back to defaults. Every malformed value is collected and
// reported in a single error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       8080,
		SQLitePath:     "reservations.db",
		LogLevel:       slog.LevelInfo,
		BusyTimeout:    5 * time.Second,
		RequestTimeout: 15 * time.Second,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("RESERVATION_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "RESERVATION_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if value, ok := os.LookupEnv("RESERVATION_SQLITE_PATH"); ok {
		if path := strings.TrimSpace(value); path != "" {
			cfg.SQLitePath = path
		} else {
			missing = append(missing, "RESERVATION_SQLITE_PATH")
		}
	}

	zone := "Asia/Seoul"
	if value := strings.TrimSpace(os.Getenv("RESERVATION_TIMEZONE")); value != "" {
		zone = value
	}
	if loc, err := time.LoadLocation(zone); err != nil {
		invalid = append(invalid, "RESERVATION_TIMEZONE")
	} else {
		cfg.Location = loc
	}

	cfg.SeedFile = strings.TrimSpace(os.Getenv("RESERVATION_SEED_FILE"))

	if levelValue := strings.TrimSpace(os.Getenv("RESERVATION_LOG_LEVEL")); levelValue != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(levelValue)); err != nil {
			invalid = append(invalid, "RESERVATION_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if d, ok, err := durationEnv("RESERVATION_BUSY_TIMEOUT"); err != nil {
		invalid = append(invalid, "RESERVATION_BUSY_TIMEOUT")
	} else if ok {
		cfg.BusyTimeout = d
	}

	if d, ok, err := durationEnv("RESERVATION_REQUEST_TIMEOUT"); err != nil {
		invalid = append(invalid, "RESERVATION_REQUEST_TIMEOUT")
	} else if ok {
		cfg.RequestTimeout = d
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are empty: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func durationEnv(key string) (time.Duration, bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, false, err
	}
	if d <= 0 {
		return 0, false, fmt.Errorf("%s must be positive", key)
	}
	return d, true, nil
}
