package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a missing collection, item or provider
	ErrNotFound = errors.New("not found")

	// ErrCollectionNotFound indicates an unknown collection name
	ErrCollectionNotFound = fmt.Errorf("collection %w", ErrNotFound)

	// ErrInvalidInput indicates a value of the wrong shape
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates a provider operation with no provider bound
	ErrNotImplemented = errors.New("not implemented")

	// ErrProviderFailure wraps errors returned by a provider
	ErrProviderFailure = errors.New("provider failure")

	// ErrQueueOverflow indicates the pending queue exceeded its drain limit
	ErrQueueOverflow = errors.New("queue drain limit exceeded")

	// ErrDuplicateKey indicates a key rejected by DuplicatesReject
	ErrDuplicateKey = fmt.Errorf("duplicate key: %w", ErrInvalidInput)
)

// opError prefixes err with the type and method that produced it, e.g.
// "List#addList: invalid input: expected a sequence of items".
func opError(op string, err error, format string, args ...any) error {
	if format == "" {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %s", op, err, fmt.Sprintf(format, args...))
}

// providerError wraps a provider failure while keeping the cause visible to errors.Is
func providerError(op string, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrProviderFailure, cause)
}
