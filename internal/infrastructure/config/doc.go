// Package config provides 12-factor configuration for the storage registry.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags in cmd/storage override individual values.
//
// Configuration Sections:
//   - Storage: list/collection defaults (pager, page size, queue bound, duplicates)
//   - Provider: file provider root and compression
//   - Logging: log level and output format
//   - Metrics: Prometheus collection toggle and namespace
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	reg := storage.New(storage.WithConfig(cfg.Storage))
//
// Environment Variables:
//   - STORAGE_PAGER, STORAGE_PAGE_SIZE, STORAGE_MAX_QUEUE_DRAIN
//   - STORAGE_DUPLICATES, STORAGE_PROVIDER
//   - PROVIDER_ROOT, PROVIDER_COMPRESS
//   - LOG_LEVEL, LOG_DEV
//   - METRICS_ENABLED, METRICS_NAMESPACE
package config
