package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider is an in-memory Provider with injectable failures
type fakeProvider struct {
	items map[string]*Item
	fail  error
	calls []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{items: make(map[string]*Item)}
}

func (p *fakeProvider) Get(_ context.Context, key string) (*Item, error) {
	p.calls = append(p.calls, "get:"+key)
	if p.fail != nil {
		return nil, p.fail
	}
	item, ok := p.items[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return item, nil
}

func (p *fakeProvider) Set(_ context.Context, key string, item *Item) error {
	p.calls = append(p.calls, "set:"+key)
	if p.fail != nil {
		return p.fail
	}
	p.items[key] = item
	return nil
}

func (p *fakeProvider) Find(_ context.Context, pattern string) ([]*Item, error) {
	p.calls = append(p.calls, "find:"+pattern)
	if p.fail != nil {
		return nil, p.fail
	}
	var out []*Item
	keys := make([]string, 0, len(p.items))
	for k := range p.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if pattern == "*" || pattern == k {
			out = append(out, p.items[k])
		}
	}
	return out, nil
}

func (p *fakeProvider) Delete(_ context.Context, key string) error {
	p.calls = append(p.calls, "delete:"+key)
	if p.fail != nil {
		return p.fail
	}
	if _, ok := p.items[key]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	delete(p.items, key)
	return nil
}

func TestCollectionKeyedSurface(t *testing.T) {
	c := NewCollection(nil)
	assert.Equal(t, KindCollection, c.Options().Kind)

	a, err := c.AddItem("posts/a.md", "A")
	require.NoError(t, err)
	_, err = c.AddItem("posts/b.md", "B")
	require.NoError(t, err)

	assert.Same(t, a, c.GetItem("posts/a.md"))
	assert.Same(t, a, c.GetItem("a"))
	assert.True(t, c.HasItem("b.md"))
	assert.False(t, c.HasItem("c.md"))
	assert.Equal(t, []string{"posts/a.md", "posts/b.md"}, c.Keys())

	// replacing a key keeps its position
	replaced, err := c.SetItem("posts/a.md", "A2")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Same(t, replaced, c.Items()[0])

	assert.True(t, c.DeleteItem("a"))
	assert.Equal(t, []string{"posts/b.md"}, c.Keys())
	assert.False(t, c.DeleteItem("a"))
}

func TestCollectionRejectsDuplicates(t *testing.T) {
	c := NewCollection(&Options{Duplicates: DuplicatesReject})
	_, err := c.SetItem("a", nil)
	require.NoError(t, err)

	_, err = c.SetItem("a", nil)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestCollectionAddItems(t *testing.T) {
	c := NewCollection(nil)
	require.NoError(t, c.AddItems(map[string]any{"b": nil, "a": nil}))
	require.NoError(t, c.AddItems([]map[string]any{{"path": "c"}}))
	assert.Equal(t, []string{"a", "b", "c"}, c.Keys())

	assert.ErrorIs(t, c.AddItems(7), ErrInvalidInput)
}

func TestCollectionWithoutProvider(t *testing.T) {
	ctx := context.Background()
	c := NewCollection(nil)

	require.NoError(t, c.Set(ctx, "a", map[string]any{"title": "A"}))
	item, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", item.Get("title"))

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Find(ctx, "*")
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.Contains(t, err.Error(), "Collection#find")

	err = c.Delete(ctx, "a")
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestCollectionSetWithoutValue(t *testing.T) {
	ctx := context.Background()
	c := NewCollection(nil)

	require.NoError(t, c.Set(ctx, "empty", nil))
	item, err := c.Get(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, item.Payload)
	assert.Empty(t, item.Data)
}

func TestCollectionWithProvider(t *testing.T) {
	ctx := context.Background()
	p := newFakeProvider()
	c := NewCollection(nil)
	c.SetProvider(p)

	require.NoError(t, c.Set(ctx, "a", "A"))
	require.NoError(t, c.Set(ctx, "b", "B"))
	assert.True(t, c.HasItem("a"))

	item, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", string(item.Payload))

	found, err := c.Find(ctx, "*")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	require.NoError(t, c.Delete(ctx, "a"))
	assert.False(t, c.HasItem("a"))

	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrProviderFailure)

	assert.Equal(t, []string{"set:a", "set:b", "get:a", "find:*", "delete:a", "get:a"}, p.calls)
}

func TestCollectionProviderFailure(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("disk on fire")
	p := newFakeProvider()
	p.fail = cause

	c := NewCollection(nil)
	c.SetProvider(p)

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.ErrorIs(t, err, cause)

	err = c.Set(ctx, "a", nil)
	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.False(t, c.HasItem("a"))

	_, err = c.Find(ctx, "*")
	assert.ErrorIs(t, err, cause)

	err = c.Delete(ctx, "a")
	assert.ErrorIs(t, err, ErrProviderFailure)
}

func TestCollectionCopiesItemsCommittedElsewhere(t *testing.T) {
	l := NewList(&Options{Pager: true})
	a, err := l.AddItem("a.md", "A")
	require.NoError(t, err)

	c := NewCollection(nil)
	got, err := c.AddItem("a.md", a)
	require.NoError(t, err)
	assert.NotSame(t, a, got)
	assert.Nil(t, got.Pager)
	assert.Same(t, a, l.GetItem("a.md"))

	// replacing releases the previous item, deleting releases the current one
	replaced, err := c.SetItem("a.md", "A2")
	require.NoError(t, err)
	assert.False(t, got.Committed())
	require.True(t, c.DeleteItem("a.md"))
	assert.False(t, replaced.Committed())

	again, err := c.AddItem("a.md", replaced)
	require.NoError(t, err)
	assert.Same(t, replaced, again)
}

func TestCollectionRejectedBatchLeavesCollectionUnchanged(t *testing.T) {
	c := NewCollection(&Options{Duplicates: DuplicatesReject})
	_, err := c.AddItem("a", nil)
	require.NoError(t, err)

	err = c.AddItems([]map[string]any{{"path": "b"}, {"path": "b"}})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	err = c.AddItems(map[string]any{"a": nil, "c": nil})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	assert.Equal(t, []string{"a"}, c.Keys())
}
