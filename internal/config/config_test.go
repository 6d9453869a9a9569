package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarosser06/mosaic/internal/domain"
)

func TestLoad_RequiresDB(t *testing.T) {
	t.Setenv("MOSAIC_DB", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MOSAIC_DB")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MOSAIC_DB", "/tmp/mosaic-test.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/mosaic-test.db", cfg.DBPath)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, time.Monday, cfg.WeekBoundary)
	assert.Equal(t, domain.PrivacyPrivate, cfg.DefaultPrivacy)
	assert.Equal(t, time.Minute, cfg.CheckInterval)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.True(t, cfg.NotifyEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MOSAIC_DB", "/tmp/mosaic-test.db")
	t.Setenv("MOSAIC_BRIDGE_URL", "http://localhost:8123/notify")
	t.Setenv("MOSAIC_NOTIFY_ENABLED", "false")
	t.Setenv("MOSAIC_TIMEZONE", "America/New_York")
	t.Setenv("MOSAIC_WEEK_START", "sunday")
	t.Setenv("MOSAIC_DEFAULT_PRIVACY", "internal")
	t.Setenv("MOSAIC_CHECK_INTERVAL_SECONDS", "30")
	t.Setenv("MOSAIC_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8123/notify", cfg.BridgeURL)
	assert.False(t, cfg.NotifyEnabled)
	assert.Equal(t, "America/New_York", cfg.Timezone)
	assert.Equal(t, time.Sunday, cfg.WeekBoundary)
	assert.Equal(t, domain.PrivacyInternal, cfg.DefaultPrivacy)
	assert.Equal(t, 30*time.Second, cfg.CheckInterval)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("MOSAIC_DB", "/tmp/mosaic-test.db")

	t.Setenv("MOSAIC_TIMEZONE", "Mars/Olympus")
	_, err := Load()
	assert.Error(t, err)
	t.Setenv("MOSAIC_TIMEZONE", "")

	t.Setenv("MOSAIC_WEEK_START", "someday")
	_, err = Load()
	assert.Error(t, err)
	t.Setenv("MOSAIC_WEEK_START", "")

	t.Setenv("MOSAIC_DEFAULT_PRIVACY", "secret")
	_, err = Load()
	assert.Error(t, err)
}
