package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen   = errors.New("circuit breaker is open")
	ErrTooManyProbes = errors.New("too many probe calls")
)

const (
	defaultThreshold  = 5
	defaultCooldown   = 30 * time.Second
	defaultMaxProbes  = 1
	defaultResetAfter = time.Minute
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures a Breaker. Zero values select the defaults.
type Settings struct {
	// Threshold is the number of consecutive failures that opens the circuit
	Threshold uint32
	// Cooldown is how long the circuit stays open before probing
	Cooldown time.Duration
	// MaxProbes is the number of calls admitted while half-open
	MaxProbes uint32
	// ResetAfter clears the closed-state counts periodically
	ResetAfter time.Duration
	// IsFailure decides whether an error counts against the backend.
	// Defaults to any non-nil error.
	IsFailure func(err error) bool
	// OnStateChange is called after a transition, outside the lock
	OnStateChange func(name string, from, to State)
	// Clock returns the current time
	Clock func() time.Time
}

// Counts holds call statistics for the current generation
type Counts struct {
	Calls                uint32
	Successes            uint32
	Failures             uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// Breaker stops calling a backend after repeated failures
type Breaker struct {
	name     string
	settings Settings

	mu         sync.Mutex
	state      State
	counts     Counts
	generation uint64
	expiry     time.Time
}

// New creates a closed breaker
func New(name string, settings Settings) *Breaker {
	if settings.Threshold == 0 {
		settings.Threshold = defaultThreshold
	}
	if settings.Cooldown == 0 {
		settings.Cooldown = defaultCooldown
	}
	if settings.MaxProbes == 0 {
		settings.MaxProbes = defaultMaxProbes
	}
	if settings.ResetAfter == 0 {
		settings.ResetAfter = defaultResetAfter
	}
	if settings.IsFailure == nil {
		settings.IsFailure = func(err error) bool { return err != nil }
	}
	if settings.Clock == nil {
		settings.Clock = time.Now
	}

	return &Breaker{
		name:     name,
		settings: settings,
		state:    StateClosed,
		expiry:   settings.Clock().Add(settings.ResetAfter),
	}
}

// Name returns the breaker name
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state
func (b *Breaker) State() State {
	b.mu.Lock()
	state, _, change := b.current(b.settings.Clock())
	b.mu.Unlock()

	b.notify(change)
	return state
}

// Counts returns a copy of the counts for the current generation
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Do runs fn if the circuit admits it and records the outcome
func (b *Breaker) Do(fn func() error) error {
	generation, err := b.before()
	if err != nil {
		return err
	}

	defer func() {
		if e := recover(); e != nil {
			b.after(generation, true)
			panic(e)
		}
	}()

	err = fn()
	b.after(generation, b.settings.IsFailure(err))
	return err
}

// Call runs fn through b and returns its result
func Call[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var out T
	err := b.Do(func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}

type transition struct {
	from, to State
	changed  bool
}

func (b *Breaker) notify(t transition) {
	if t.changed && b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, t.from, t.to)
	}
}

func (b *Breaker) before() (uint64, error) {
	b.mu.Lock()
	state, generation, change := b.current(b.settings.Clock())

	var err error
	switch {
	case state == StateOpen:
		err = ErrCircuitOpen
	case state == StateHalfOpen && b.counts.Calls >= b.settings.MaxProbes:
		err = ErrTooManyProbes
	default:
		b.counts.Calls++
	}
	b.mu.Unlock()

	b.notify(change)
	return generation, err
}

func (b *Breaker) after(before uint64, failed bool) {
	b.mu.Lock()
	now := b.settings.Clock()
	state, generation, change := b.current(now)

	if generation == before {
		var next transition
		if failed {
			next = b.onFailure(state, now)
		} else {
			next = b.onSuccess(state, now)
		}
		if next.changed {
			change = next
		}
	}
	b.mu.Unlock()

	b.notify(change)
}

func (b *Breaker) onSuccess(state State, now time.Time) transition {
	b.counts.Successes++
	b.counts.ConsecutiveSuccesses++
	b.counts.ConsecutiveFailures = 0
	if state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.settings.MaxProbes {
		return b.setState(StateClosed, now)
	}
	return transition{}
}

func (b *Breaker) onFailure(state State, now time.Time) transition {
	switch state {
	case StateClosed:
		b.counts.Failures++
		b.counts.ConsecutiveFailures++
		b.counts.ConsecutiveSuccesses = 0
		if b.counts.ConsecutiveFailures >= b.settings.Threshold {
			return b.setState(StateOpen, now)
		}
	case StateHalfOpen:
		return b.setState(StateOpen, now)
	}
	return transition{}
}

// current advances time-based transitions and returns the state and
// generation. Callers hold mu.
func (b *Breaker) current(now time.Time) (State, uint64, transition) {
	var change transition
	switch b.state {
	case StateClosed:
		if b.expiry.Before(now) {
			b.newGeneration(now)
		}
	case StateOpen:
		if b.expiry.Before(now) {
			change = b.setState(StateHalfOpen, now)
		}
	}
	return b.state, b.generation, change
}

func (b *Breaker) setState(state State, now time.Time) transition {
	if b.state == state {
		return transition{}
	}

	prev := b.state
	b.state = state
	b.newGeneration(now)
	return transition{from: prev, to: state, changed: true}
}

func (b *Breaker) newGeneration(now time.Time) {
	b.generation++
	b.counts = Counts{}

	switch b.state {
	case StateClosed:
		b.expiry = now.Add(b.settings.ResetAfter)
	case StateOpen:
		b.expiry = now.Add(b.settings.Cooldown)
	case StateHalfOpen:
		b.expiry = time.Time{}
	}
}
