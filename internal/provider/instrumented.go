package provider

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/storage/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/storage/internal/logging"
	"github.com/GriffinCanCode/storage/internal/storage"
)

// Instrumented wraps a provider with call metrics and debug logging
type Instrumented struct {
	name    string
	next    storage.Provider
	metrics *monitoring.Metrics
	logger  *logging.Logger
}

// Instrument wraps next. metrics and logger may be nil.
func Instrument(name string, next storage.Provider, metrics *monitoring.Metrics, logger *logging.Logger) *Instrumented {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Instrumented{
		name:    name,
		next:    next,
		metrics: metrics,
		logger:  logging.Wrap(logger.Named("provider").With(zap.String("provider", name))),
	}
}

// Get implements storage.Provider
func (p *Instrumented) Get(ctx context.Context, key string) (*storage.Item, error) {
	timer := monitoring.NewTimer(p.metrics, p.name, "get")
	item, err := p.next.Get(ctx, key)
	p.observe("get", key, timer.Stop(err), err)
	return item, err
}

// Set implements storage.Provider
func (p *Instrumented) Set(ctx context.Context, key string, item *storage.Item) error {
	timer := monitoring.NewTimer(p.metrics, p.name, "set")
	err := p.next.Set(ctx, key, item)
	p.observe("set", key, timer.Stop(err), err)
	return err
}

// Find implements storage.Provider
func (p *Instrumented) Find(ctx context.Context, pattern string) ([]*storage.Item, error) {
	timer := monitoring.NewTimer(p.metrics, p.name, "find")
	items, err := p.next.Find(ctx, pattern)
	p.observe("find", pattern, timer.Stop(err), err)
	return items, err
}

// Delete implements storage.Provider
func (p *Instrumented) Delete(ctx context.Context, key string) error {
	timer := monitoring.NewTimer(p.metrics, p.name, "delete")
	err := p.next.Delete(ctx, key)
	p.observe("delete", key, timer.Stop(err), err)
	return err
}

// Unwrap returns the wrapped provider
func (p *Instrumented) Unwrap() storage.Provider { return p.next }

func (p *Instrumented) observe(op, key string, elapsed time.Duration, err error) {
	if err != nil {
		p.logger.Debug("provider call failed",
			zap.String("op", op),
			zap.String("key", key),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return
	}
	p.logger.Debug("provider call",
		zap.String("op", op),
		zap.String("key", key),
		zap.Duration("elapsed", elapsed))
}
