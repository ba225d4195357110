package provider

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/storage/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/storage/internal/logging"
	"github.com/GriffinCanCode/storage/internal/storage"
)

func TestInstrumented(t *testing.T) {
	ctx := context.Background()
	metrics := monitoring.NewMetrics(prometheus.NewRegistry(), "test")
	core, logs := observer.New(zapcore.DebugLevel)

	p := Instrument("memory", NewMemory(), metrics, logging.Wrap(zap.New(core)))

	require.NoError(t, p.Set(ctx, "a", newItem(t, "a", nil)))
	_, err := p.Get(ctx, "a")
	require.NoError(t, err)
	_, err = p.Get(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = p.Find(ctx, "*")
	require.NoError(t, err)
	require.NoError(t, p.Delete(ctx, "a"))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProviderCalls.WithLabelValues("memory", "get", monitoring.StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProviderCalls.WithLabelValues("memory", "get", monitoring.StatusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProviderCalls.WithLabelValues("memory", "delete", monitoring.StatusSuccess)))
	assert.Equal(t, int64(1), metrics.Snapshot().ProviderErrors)

	assert.Equal(t, 4, logs.FilterMessage("provider call").Len())
	failed := logs.FilterMessage("provider call failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "memory", failed[0].ContextMap()["provider"])

	_, ok := p.Unwrap().(*Memory)
	assert.True(t, ok)
}

func TestInstrumentedWithoutMetrics(t *testing.T) {
	p := Instrument("memory", NewMemory(), nil, nil)
	require.NoError(t, p.Set(context.Background(), "a", newItem(t, "a", nil)))
}
