package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func fail() error    { return errBackend }
func succeed() error { return nil }

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		calls    []bool // true = success
		expected State
	}{
		{"stays closed on successes", []bool{true, true, true}, StateClosed},
		{"stays closed below threshold", []bool{false, false}, StateClosed},
		{"opens at threshold", []bool{false, false, false}, StateOpen},
		{"success resets the run", []bool{false, false, true, false, false}, StateClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("test", Settings{Threshold: 3, Clock: newFakeClock().Now})
			for _, ok := range tt.calls {
				if ok {
					_ = b.Do(succeed)
				} else {
					_ = b.Do(fail)
				}
			}
			assert.Equal(t, tt.expected, b.State())
		})
	}
}

func TestBreakerCounts(t *testing.T) {
	b := New("test", Settings{})

	require.NoError(t, b.Do(succeed))
	counts := b.Counts()
	assert.Equal(t, uint32(1), counts.Calls)
	assert.Equal(t, uint32(1), counts.Successes)
	assert.Equal(t, uint32(1), counts.ConsecutiveSuccesses)

	assert.ErrorIs(t, b.Do(fail), errBackend)
	counts = b.Counts()
	assert.Equal(t, uint32(2), counts.Calls)
	assert.Equal(t, uint32(1), counts.Failures)
	assert.Equal(t, uint32(1), counts.ConsecutiveFailures)
	assert.Equal(t, uint32(0), counts.ConsecutiveSuccesses)
}

func TestBreakerFailsFastWhenOpen(t *testing.T) {
	b := New("test", Settings{Threshold: 2, Clock: newFakeClock().Now})
	_ = b.Do(fail)
	_ = b.Do(fail)

	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	clock := newFakeClock()
	b := New("test", Settings{
		Threshold: 1,
		Cooldown:  time.Second,
		MaxProbes: 2,
		Clock:     clock.Now,
	})

	_ = b.Do(fail)
	require.Equal(t, StateOpen, b.State())

	clock.Advance(2 * time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	require.NoError(t, b.Do(succeed))
	assert.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, b.Do(succeed))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := newFakeClock()
	b := New("test", Settings{Threshold: 1, Cooldown: time.Second, Clock: clock.Now})

	_ = b.Do(fail)
	clock.Advance(2 * time.Second)
	assert.ErrorIs(t, b.Do(fail), errBackend)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerLimitsProbes(t *testing.T) {
	clock := newFakeClock()
	b := New("test", Settings{Threshold: 1, Cooldown: time.Second, Clock: clock.Now})

	_ = b.Do(fail)
	clock.Advance(2 * time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- b.Do(func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	assert.ErrorIs(t, b.Do(succeed), ErrTooManyProbes)
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerIsFailure(t *testing.T) {
	expected := errors.New("not found")
	b := New("test", Settings{
		Threshold: 1,
		IsFailure: func(err error) bool { return err != nil && !errors.Is(err, expected) },
	})

	assert.ErrorIs(t, b.Do(func() error { return expected }), expected)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, uint32(1), b.Counts().Successes)
}

func TestBreakerResetAfter(t *testing.T) {
	clock := newFakeClock()
	b := New("test", Settings{Threshold: 2, ResetAfter: time.Second, Clock: clock.Now})

	_ = b.Do(fail)
	clock.Advance(2 * time.Second)
	_ = b.Do(fail)

	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, uint32(1), b.Counts().ConsecutiveFailures)
}

func TestBreakerOnStateChange(t *testing.T) {
	clock := newFakeClock()
	var transitions []string
	b := New("fs", Settings{
		Threshold: 1,
		Cooldown:  time.Second,
		Clock:     clock.Now,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
	})

	_ = b.Do(fail)
	clock.Advance(2 * time.Second)
	_ = b.Do(succeed)

	assert.Equal(t, []string{
		"fs:closed->open",
		"fs:open->half-open",
		"fs:half-open->closed",
	}, transitions)
}

func TestBreakerPanicCountsAsFailure(t *testing.T) {
	b := New("test", Settings{Threshold: 1})

	assert.Panics(t, func() {
		_ = b.Do(func() error { panic("boom") })
	})
	assert.Equal(t, StateOpen, b.State())
}

func TestCall(t *testing.T) {
	b := New("test", Settings{})

	got, err := Call(b, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	_, err = Call(b, func() (int, error) { return 0, errBackend })
	assert.ErrorIs(t, err, errBackend)
}
