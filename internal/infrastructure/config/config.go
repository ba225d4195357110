package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Storage  StorageConfig
	Provider ProviderConfig
	Logging  LogConfig
	Metrics  MetricsConfig
}

// StorageConfig holds defaults applied to every list and collection the
// registry creates.
type StorageConfig struct {
	Pager         bool   `envconfig:"STORAGE_PAGER" default:"false"`
	PageSize      int    `envconfig:"STORAGE_PAGE_SIZE" default:"10"`
	MaxQueueDrain int    `envconfig:"STORAGE_MAX_QUEUE_DRAIN" default:"1000"`
	Duplicates    string `envconfig:"STORAGE_DUPLICATES" default:"allow"`
	Provider      string `envconfig:"STORAGE_PROVIDER" default:""`
}

// ProviderConfig holds file provider configuration.
type ProviderConfig struct {
	Root     string `envconfig:"PROVIDER_ROOT" default:""`
	Compress bool   `envconfig:"PROVIDER_COMPRESS" default:"false"`

	// Circuit breaker guarding provider calls
	BreakerThreshold uint32        `envconfig:"PROVIDER_BREAKER_THRESHOLD" default:"5"`
	BreakerCooldown  time.Duration `envconfig:"PROVIDER_BREAKER_COOLDOWN" default:"30s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled   bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Namespace string `envconfig:"METRICS_NAMESPACE" default:"storage"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Pager:         false,
			PageSize:      10,
			MaxQueueDrain: 1000,
			Duplicates:    "allow",
		},
		Provider: ProviderConfig{
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "storage",
		},
	}
}

// Validate rejects values the registry cannot honour.
func (c *Config) Validate() error {
	switch c.Storage.Duplicates {
	case "allow", "reject":
	default:
		return fmt.Errorf("invalid STORAGE_DUPLICATES %q: want allow or reject", c.Storage.Duplicates)
	}
	if c.Storage.PageSize <= 0 {
		return fmt.Errorf("invalid STORAGE_PAGE_SIZE %d: must be positive", c.Storage.PageSize)
	}
	if c.Storage.MaxQueueDrain <= 0 {
		return fmt.Errorf("invalid STORAGE_MAX_QUEUE_DRAIN %d: must be positive", c.Storage.MaxQueueDrain)
	}
	if c.Provider.BreakerThreshold == 0 {
		return fmt.Errorf("invalid PROVIDER_BREAKER_THRESHOLD %d: must be positive", c.Provider.BreakerThreshold)
	}
	return nil
}
