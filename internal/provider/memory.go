package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/GriffinCanCode/storage/internal/storage"
)

// Memory is a concurrency-safe in-memory provider. Stored items are copies,
// so later mutation by the caller does not leak into the provider.
type Memory struct {
	mu    sync.RWMutex
	items map[string]*storage.Item
}

// NewMemory creates an empty memory provider
func NewMemory() *Memory {
	return &Memory{items: make(map[string]*storage.Item)}
}

// Get returns a copy of the item stored under key
func (m *Memory) Get(ctx context.Context, key string) (*storage.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[key]
	if !ok {
		return nil, fmt.Errorf("%w: key %q", storage.ErrNotFound, key)
	}
	return copyItem(item), nil
}

// Set stores a copy of item under key
func (m *Memory) Set(ctx context.Context, key string, item *storage.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" || item == nil {
		return fmt.Errorf("%w: key and item are required", storage.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = copyItem(item)
	return nil
}

// Find returns copies of the items whose keys match the glob pattern, in key order
func (m *Memory) Find(ctx context.Context, pattern string) ([]*storage.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: bad pattern %q", storage.ErrInvalidInput, pattern)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.items))
	for key := range m.items {
		if ok, _ := doublestar.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := make([]*storage.Item, len(keys))
	for i, key := range keys {
		out[i] = copyItem(m.items[key])
	}
	return out, nil
}

// Delete removes key
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[key]; !ok {
		return fmt.Errorf("%w: key %q", storage.ErrNotFound, key)
	}
	delete(m.items, key)
	return nil
}

// Len returns the number of stored items
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// copyItem deep-copies item keeping its ID
func copyItem(item *storage.Item) *storage.Item {
	c := item.Clone()
	c.ID = item.ID
	return c
}
