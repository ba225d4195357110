/*
Package monitoring provides Prometheus metrics for the storage registry.

# Overview

Collectors track collection creation, item commits and deletions, lookup
hit rates, queue draining and provider calls. They are registered on a
caller-supplied prometheus.Registerer so several registries (and tests) can
coexist in one process.

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg, "storage")

	registry := storage.New(storage.WithMetrics(metrics))

	// Time provider calls
	timer := monitoring.NewTimer(metrics, "fs", "get")
	// ... perform call ...
	timer.Stop(err)

# Exposition

The cmd/storage binary prints gathered families with -metrics. Embedding
programs can serve reg with promhttp.HandlerFor.
*/
package monitoring
