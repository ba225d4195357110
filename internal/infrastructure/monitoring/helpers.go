package monitoring

import "time"

// Provider call statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Timer measures a single provider call
type Timer struct {
	metrics  *Metrics
	provider string
	op       string
	start    time.Time
}

// NewTimer starts timing op on provider. A nil Metrics yields a Timer whose
// Stop is a no-op.
func NewTimer(metrics *Metrics, provider, op string) *Timer {
	return &Timer{
		metrics:  metrics,
		provider: provider,
		op:       op,
		start:    time.Now(),
	}
}

// Stop records the call with a status derived from err and returns the elapsed time
func (t *Timer) Stop(err error) time.Duration {
	elapsed := time.Since(t.start)
	if t.metrics == nil {
		return elapsed
	}

	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	t.metrics.RecordProviderCall(t.provider, t.op, status, elapsed)
	return elapsed
}
