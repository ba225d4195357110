// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for humans
//
// The registry, lists and providers log through child loggers created with
// Named and ForCollection, so every line carries its subsystem and the
// collection it concerns.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.ForCollection("posts").Debug("item added", zap.String("key", "a.md"))
package logging
