package provider

import (
	"context"
	"errors"

	"github.com/GriffinCanCode/storage/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/storage/internal/storage"
)

// Guarded wraps a provider with a circuit breaker so a failing backend
// fails fast instead of being called on every write
type Guarded struct {
	next    storage.Provider
	breaker *resilience.Breaker
}

// Guard wraps next with breaker. A nil breaker gets one named "provider"
// with default settings that ignore expected errors.
func Guard(next storage.Provider, breaker *resilience.Breaker) *Guarded {
	if breaker == nil {
		breaker = resilience.New("provider", resilience.Settings{IsFailure: IsBackendFailure})
	}
	return &Guarded{next: next, breaker: breaker}
}

// IsBackendFailure reports whether err indicates a broken backend. Missing
// keys, bad input and cancelled contexts are caller outcomes.
func IsBackendFailure(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, storage.ErrInvalidInput),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// Get implements storage.Provider
func (p *Guarded) Get(ctx context.Context, key string) (*storage.Item, error) {
	return resilience.Call(p.breaker, func() (*storage.Item, error) {
		return p.next.Get(ctx, key)
	})
}

// Set implements storage.Provider
func (p *Guarded) Set(ctx context.Context, key string, item *storage.Item) error {
	return p.breaker.Do(func() error {
		return p.next.Set(ctx, key, item)
	})
}

// Find implements storage.Provider
func (p *Guarded) Find(ctx context.Context, pattern string) ([]*storage.Item, error) {
	return resilience.Call(p.breaker, func() ([]*storage.Item, error) {
		return p.next.Find(ctx, pattern)
	})
}

// Delete implements storage.Provider
func (p *Guarded) Delete(ctx context.Context, key string) error {
	return p.breaker.Do(func() error {
		return p.next.Delete(ctx, key)
	})
}

// Breaker returns the circuit breaker
func (p *Guarded) Breaker() *resilience.Breaker { return p.breaker }

// Unwrap returns the wrapped provider
func (p *Guarded) Unwrap() storage.Provider { return p.next }
