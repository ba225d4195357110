package monitoring

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewMetrics(reg, "test"), reg
}

func TestNewMetricsIsolatedRegistries(t *testing.T) {
	// Two instances on separate registries must not collide
	m1, _ := newTestMetrics(t)
	m2, _ := newTestMetrics(t)
	assert.NotSame(t, m1, m2)
}

func TestRecordCollectionCreated(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordCollectionCreated("list", 1)
	m.RecordCollectionCreated("collection", 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CollectionsCreated.WithLabelValues("list")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CollectionsActive))
	assert.Equal(t, int64(2), m.Snapshot().Collections)
}

func TestRecordItemAddedAndLookup(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordItemAdded("posts")
	m.RecordItemAdded("posts")
	m.RecordLookup("find", true)
	m.RecordLookup("find", false)
	m.RecordLookup("find", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ItemsAdded.WithLabelValues("posts")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Lookups.WithLabelValues("find", "miss")))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.ItemsAdded)
	assert.Equal(t, int64(1), snap.LookupHits)
	assert.Equal(t, int64(2), snap.LookupMisses)
}

func TestRecordQueueDrainedSkipsZero(t *testing.T) {
	m, reg := newTestMetrics(t)

	m.RecordQueueDrained("posts", 0)
	count, err := testutil.GatherAndCount(reg, "test_queue_drained_total")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	m.RecordQueueDrained("posts", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.QueueDrained.WithLabelValues("posts")))
}

func TestTimer(t *testing.T) {
	m, _ := newTestMetrics(t)

	NewTimer(m, "memory", "get").Stop(nil)
	NewTimer(m, "memory", "get").Stop(errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderCalls.WithLabelValues("memory", "get", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderCalls.WithLabelValues("memory", "get", StatusError)))
	assert.Equal(t, int64(1), m.Snapshot().ProviderErrors)
}

func TestTimerWithoutMetrics(t *testing.T) {
	elapsed := NewTimer(nil, "memory", "get").Stop(nil)
	assert.GreaterOrEqual(t, elapsed.Nanoseconds(), int64(0))
}
