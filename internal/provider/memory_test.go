package provider

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/storage/internal/storage"
)

func newItem(t *testing.T, key string, value any) *storage.Item {
	t.Helper()
	item, err := storage.NewItem(key, value)
	require.NoError(t, err)
	return item
}

func TestMemoryCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	item := newItem(t, "posts/a.md", map[string]any{"title": "A"})
	require.NoError(t, m.Set(ctx, item.Key, item))

	got, err := m.Get(ctx, "posts/a.md")
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, "A", got.Get("title"))

	// stored values are copies
	item.Data["title"] = "changed"
	got, err = m.Get(ctx, "posts/a.md")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Get("title"))

	require.NoError(t, m.Delete(ctx, "posts/a.md"))
	_, err = m.Get(ctx, "posts/a.md")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, m.Delete(ctx, "posts/a.md"), storage.ErrNotFound)
}

func TestMemoryFind(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, key := range []string{"posts/b.md", "posts/a.md", "pages/about.md", "posts/2024/c.md"} {
		require.NoError(t, m.Set(ctx, key, newItem(t, key, nil)))
	}

	tests := []struct {
		pattern string
		want    []string
	}{
		{"posts/*.md", []string{"posts/a.md", "posts/b.md"}},
		{"posts/**/*.md", []string{"posts/2024/c.md", "posts/a.md", "posts/b.md"}},
		{"pages/about.md", []string{"pages/about.md"}},
		{"*.txt", nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			items, err := m.Find(ctx, tt.pattern)
			require.NoError(t, err)
			var keys []string
			for _, item := range items {
				keys = append(keys, item.Key)
			}
			assert.Equal(t, tt.want, keys)
		})
	}

	_, err := m.Find(ctx, "[a-")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestMemoryValidationAndContext(t *testing.T) {
	m := NewMemory()
	assert.ErrorIs(t, m.Set(context.Background(), "", newItem(t, "a", nil)), storage.ErrInvalidInput)
	assert.ErrorIs(t, m.Set(context.Background(), "a", nil), storage.ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			item, err := storage.NewItem(key, nil)
			if err != nil {
				t.Error(err)
				return
			}
			_ = m.Set(ctx, key, item)
			_, _ = m.Get(ctx, key)
			_, _ = m.Find(ctx, "*")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, m.Len())
}

func TestMemoryBacksCollection(t *testing.T) {
	ctx := context.Background()
	r := storage.New(storage.WithProvider("memory", NewMemory()))

	store, err := r.Create("page", &storage.Options{Kind: storage.KindCollection, Provider: "memory"})
	require.NoError(t, err)
	pages := store.(*storage.Collection)

	require.NoError(t, pages.Set(ctx, "about.md", "About"))
	found, err := pages.Find(ctx, "*.md")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "About", string(found[0].Payload))
}
