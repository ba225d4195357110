/*
Package resilience provides a circuit breaker for provider calls.

A Breaker counts consecutive failures of a backend. Once Threshold is
reached the circuit opens and calls fail fast with ErrCircuitOpen until
Cooldown elapses. The breaker then admits MaxProbes calls while half-open;
enough successes close it again and any failure reopens it.

	Closed --[Threshold failures]--> Open --[Cooldown]--> Half-Open
	   ^                                                     |
	   +-----------------[MaxProbes successes]---------------+

IsFailure lets callers exclude expected errors, such as a missing key,
from the count.

# Usage

	breaker := resilience.New("fs", resilience.Settings{
		Threshold: 5,
		Cooldown:  30 * time.Second,
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, storage.ErrNotFound)
		},
	})

	item, err := resilience.Call(breaker, func() (*storage.Item, error) {
		return files.Get(ctx, key)
	})
*/
package resilience
