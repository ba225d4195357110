package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.False(t, cfg.Storage.Pager)
	assert.Equal(t, 10, cfg.Storage.PageSize)
	assert.Equal(t, 1000, cfg.Storage.MaxQueueDrain)
	assert.Equal(t, "allow", cfg.Storage.Duplicates)
	assert.Empty(t, cfg.Storage.Provider)

	assert.Empty(t, cfg.Provider.Root)
	assert.False(t, cfg.Provider.Compress)
	assert.Equal(t, uint32(5), cfg.Provider.BreakerThreshold)
	assert.Equal(t, 30*time.Second, cfg.Provider.BreakerCooldown)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "storage", cfg.Metrics.Namespace)

	require.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefaultWithoutEnv(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"STORAGE_PAGER":             "true",
		"STORAGE_PAGE_SIZE":         "25",
		"STORAGE_MAX_QUEUE_DRAIN":   "50",
		"STORAGE_DUPLICATES":        "reject",
		"STORAGE_PROVIDER":          "fs",
		"PROVIDER_ROOT":             "/var/lib/storage",
		"PROVIDER_COMPRESS":         "true",
		"PROVIDER_BREAKER_COOLDOWN": "1m",
		"LOG_LEVEL":                 "debug",
		"LOG_DEV":                   "true",
		"METRICS_ENABLED":           "false",
		"METRICS_NAMESPACE":         "site",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Storage.Pager)
	assert.Equal(t, 25, cfg.Storage.PageSize)
	assert.Equal(t, 50, cfg.Storage.MaxQueueDrain)
	assert.Equal(t, "reject", cfg.Storage.Duplicates)
	assert.Equal(t, "fs", cfg.Storage.Provider)
	assert.Equal(t, "/var/lib/storage", cfg.Provider.Root)
	assert.True(t, cfg.Provider.Compress)
	assert.Equal(t, time.Minute, cfg.Provider.BreakerCooldown)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "site", cfg.Metrics.Namespace)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("STORAGE_PAGER", "true")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Storage.Pager)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// untouched values keep their defaults
	assert.Equal(t, 10, cfg.Storage.PageSize)
	assert.Equal(t, "allow", cfg.Storage.Duplicates)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unparseable bool", "STORAGE_PAGER", "maybe"},
		{"unknown duplicates policy", "STORAGE_DUPLICATES", "merge"},
		{"zero page size", "STORAGE_PAGE_SIZE", "0"},
		{"negative queue bound", "STORAGE_MAX_QUEUE_DRAIN", "-1"},
		{"zero breaker threshold", "PROVIDER_BREAKER_THRESHOLD", "0"},
		{"bad cooldown", "PROVIDER_BREAKER_COOLDOWN", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)

			// LoadOrDefault falls back instead of failing
			assert.Equal(t, Default(), LoadOrDefault())
		})
	}
}
