package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for registry and provider activity
type Metrics struct {
	// Registry metrics
	CollectionsCreated *prometheus.CounterVec
	CollectionsActive  prometheus.Gauge
	ListsCreated       prometheus.Counter

	// Item metrics
	ItemsAdded   *prometheus.CounterVec
	ItemsDeleted *prometheus.CounterVec
	Lookups      *prometheus.CounterVec
	QueueDrained *prometheus.CounterVec

	// Provider metrics
	ProviderCalls    *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for callers that do not scrape Prometheus
type Snapshot struct {
	Collections    int64
	ItemsAdded     int64
	LookupHits     int64
	LookupMisses   int64
	ProviderErrors int64
}

// NewMetrics registers the collectors on reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated from the global registry.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "storage"
	}
	factory := promauto.With(reg)

	return &Metrics{
		CollectionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "collections_created_total",
				Help:      "Total number of collections created by the registry",
			},
			[]string{"kind"},
		),
		CollectionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "collections_active",
				Help:      "Number of collections registered under a name",
			},
		),
		ListsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lists_created_total",
				Help:      "Total number of unregistered lists created",
			},
		),
		ItemsAdded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_added_total",
				Help:      "Total number of items committed",
			},
			[]string{"collection"},
		),
		ItemsDeleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_deleted_total",
				Help:      "Total number of items removed",
			},
			[]string{"collection"},
		),
		Lookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lookups_total",
				Help:      "Total number of registry lookups",
			},
			[]string{"op", "result"},
		),
		QueueDrained: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queue_drained_total",
				Help:      "Total number of queued items committed during addItem",
			},
			[]string{"collection"},
		),
		ProviderCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_calls_total",
				Help:      "Total number of provider calls",
			},
			[]string{"provider", "op", "status"},
		),
		ProviderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_duration_seconds",
				Help:      "Provider call duration in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"provider", "op"},
		),
	}
}

// RecordCollectionCreated records a registered collection
func (m *Metrics) RecordCollectionCreated(kind string, active int) {
	m.CollectionsCreated.WithLabelValues(kind).Inc()
	m.CollectionsActive.Set(float64(active))

	m.mu.Lock()
	m.snapshot.Collections = int64(active)
	m.mu.Unlock()
}

// RecordListCreated records an unregistered list
func (m *Metrics) RecordListCreated() {
	m.ListsCreated.Inc()
}

// RecordItemAdded records a committed item
func (m *Metrics) RecordItemAdded(collection string) {
	m.ItemsAdded.WithLabelValues(collection).Inc()

	m.mu.Lock()
	m.snapshot.ItemsAdded++
	m.mu.Unlock()
}

// RecordItemDeleted records a removed item
func (m *Metrics) RecordItemDeleted(collection string) {
	m.ItemsDeleted.WithLabelValues(collection).Inc()
}

// RecordQueueDrained records items committed from the pending queue
func (m *Metrics) RecordQueueDrained(collection string, n int) {
	if n == 0 {
		return
	}
	m.QueueDrained.WithLabelValues(collection).Add(float64(n))
}

// RecordLookup records a lookup outcome
func (m *Metrics) RecordLookup(op string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.Lookups.WithLabelValues(op, result).Inc()

	m.mu.Lock()
	if hit {
		m.snapshot.LookupHits++
	} else {
		m.snapshot.LookupMisses++
	}
	m.mu.Unlock()
}

// RecordProviderCall records a provider call
func (m *Metrics) RecordProviderCall(provider, op, status string, duration time.Duration) {
	m.ProviderCalls.WithLabelValues(provider, op, status).Inc()
	m.ProviderDuration.WithLabelValues(provider, op).Observe(duration.Seconds())

	if status != StatusSuccess {
		m.mu.Lock()
		m.snapshot.ProviderErrors++
		m.mu.Unlock()
	}
}

// Snapshot returns a copy of the running totals
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
