// Package config reads process configuration from environment variables,
// falling back to defaults for any unset values.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jarosser06/mosaic/internal/domain"
)

// Config holds all runtime settings.
type Config struct {
	DBPath string // required

	BridgeURL     string
	NotifyEnabled bool
	DefaultSound  string

	Timezone       string
	WeekBoundary   time.Weekday
	DefaultPrivacy domain.PrivacyLevel

	CheckInterval time.Duration
	LogLevel      slog.Level
}

// Default returns the settings used before environment overrides.
func Default() Config {
	return Config{
		NotifyEnabled: true,
		Timezone:      "UTC",
		WeekBoundary:  time.Monday,
		DefaultPrivacy: domain.PrivacyPrivate,
		CheckInterval: time.Minute,
		LogLevel:      slog.LevelInfo,
	}
}

// Load reads configuration from the environment. The database path is
// required; its absence is a startup failure.
func Load() (Config, error) {
	cfg := Default()

	cfg.DBPath = os.Getenv("MOSAIC_DB")
	if cfg.DBPath == "" {
		return cfg, fmt.Errorf("MOSAIC_DB is required")
	}

	cfg.BridgeURL = os.Getenv("MOSAIC_BRIDGE_URL")
	if v := os.Getenv("MOSAIC_NOTIFY_ENABLED"); v != "" {
		cfg.NotifyEnabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("MOSAIC_NOTIFY_SOUND"); v != "" {
		cfg.DefaultSound = v
	}

	if v := os.Getenv("MOSAIC_TIMEZONE"); v != "" {
		if _, err := time.LoadLocation(v); err != nil {
			return cfg, fmt.Errorf("MOSAIC_TIMEZONE: unknown timezone %q", v)
		}
		cfg.Timezone = v
	}
	if v := os.Getenv("MOSAIC_WEEK_START"); v != "" {
		day, err := parseWeekday(v)
		if err != nil {
			return cfg, err
		}
		cfg.WeekBoundary = day
	}
	if v := os.Getenv("MOSAIC_DEFAULT_PRIVACY"); v != "" {
		if !domain.ValidPrivacyLevel(v) {
			return cfg, fmt.Errorf("MOSAIC_DEFAULT_PRIVACY: unknown privacy level %q", v)
		}
		cfg.DefaultPrivacy = domain.PrivacyLevel(v)
	}

	if v := os.Getenv("MOSAIC_CHECK_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CheckInterval = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("MOSAIC_LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return cfg, err
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

func parseWeekday(v string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "sunday", "sun":
		return time.Sunday, nil
	case "monday", "mon":
		return time.Monday, nil
	case "tuesday", "tue":
		return time.Tuesday, nil
	case "wednesday", "wed":
		return time.Wednesday, nil
	case "thursday", "thu":
		return time.Thursday, nil
	case "friday", "fri":
		return time.Friday, nil
	case "saturday", "sat":
		return time.Saturday, nil
	}
	return time.Monday, fmt.Errorf("MOSAIC_WEEK_START: unknown weekday %q", v)
}

func parseLogLevel(v string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("MOSAIC_LOG_LEVEL: unknown level %q", v)
}
