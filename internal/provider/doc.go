/*
Package provider implements backing stores for storage.Collection.

# Providers

  - Memory: mutex-guarded map with doublestar glob Find
  - File: one JSON document per key under a root directory, written
    atomically and optionally gzip compressed
  - Instrumented: wraps any provider with Prometheus timing and zap logging
  - Guarded: wraps any provider with a resilience.Breaker so a failing
    backend fails fast

All providers report missing keys with storage.ErrNotFound and malformed
input with storage.ErrInvalidInput.

# Example Usage

	fs, err := provider.NewFile("/var/lib/site", provider.WithCompression(true))
	if err != nil {
		return err
	}
	guarded := provider.Guard(fs, nil)
	r := storage.New(storage.WithProvider("fs", provider.Instrument("fs", guarded, metrics, logger)))

	pages, _ := r.Create("page", &storage.Options{Kind: storage.KindCollection, Provider: "fs"})
	pages.(*storage.Collection).Set(ctx, "about.md", "About us")
*/
package provider
