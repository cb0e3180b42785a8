package snapshot

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popvault/popdash/internal/model"
)

func dataset(source string) *Dataset {
	price := 24.99
	return &Dataset{
		Records: []model.Record{
			{Category: "Vinyl Figures", Name: "Bulbasaur", Price: &price},
		},
		Diagnostics: model.Diagnostics{RowCount: 1, RecordCount: 1},
		Source:      source,
		LoadedAt:    time.Now(),
	}
}

func TestKey(t *testing.T) {
	k1 := Key([]byte("data-a"), "fp-1")
	k2 := Key([]byte("data-a"), "fp-1")
	assert.Equal(t, k1, k2)

	// Different bytes or a different profile change the key.
	assert.NotEqual(t, k1, Key([]byte("data-b"), "fp-1"))
	assert.NotEqual(t, k1, Key([]byte("data-a"), "fp-2"))
}

func TestStore_BasicGetPut(t *testing.T) {
	store := New(8)

	// Miss on empty store.
	got, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, got)

	ds := dataset("prices.csv")
	store.Put("k1", ds)

	got, ok = store.Get("k1")
	require.True(t, ok)
	assert.Equal(t, ds, got)

	// Different key is still a miss.
	_, ok = store.Get("k2")
	assert.False(t, ok)
}

func TestStore_LRUEviction(t *testing.T) {
	store := New(3)

	store.Put("a", dataset("a"))
	store.Put("b", dataset("b"))
	store.Put("c", dataset("c"))

	// Store is full. Adding a fourth should evict "a" (oldest).
	store.Put("d", dataset("d"))

	_, ok := store.Get("a")
	assert.False(t, ok)
	for _, key := range []string{"b", "c", "d"} {
		_, ok := store.Get(key)
		assert.True(t, ok, key)
	}
}

func TestStore_LRUEviction_AccessOrder(t *testing.T) {
	store := New(3)

	store.Put("a", dataset("a"))
	store.Put("b", dataset("b"))
	store.Put("c", dataset("c"))

	// Access "a" to move it to back.
	store.Get("a")

	// Now "b" is the oldest. Adding "d" should evict "b".
	store.Put("d", dataset("d"))

	_, ok := store.Get("b")
	assert.False(t, ok)
	for _, key := range []string{"a", "c", "d"} {
		_, ok := store.Get(key)
		assert.True(t, ok, key)
	}
}

func TestStore_Invalidate(t *testing.T) {
	store := New(8)

	store.Put("a", dataset("a"))
	store.Put("b", dataset("b"))

	store.Invalidate("a")

	_, ok := store.Get("a")
	assert.False(t, ok)
	_, ok = store.Get("b")
	assert.True(t, ok)

	// Invalidating an absent key is a no-op.
	store.Invalidate("never-stored")
	store.mu.RLock()
	assert.Len(t, store.entries, 1)
	assert.Len(t, store.order, 1)
	store.mu.RUnlock()
}

func TestStore_Reset(t *testing.T) {
	store := New(8)

	store.Put("a", dataset("a"))
	store.Put("b", dataset("b"))

	store.Reset()

	store.mu.RLock()
	assert.Empty(t, store.entries)
	assert.Empty(t, store.order)
	store.mu.RUnlock()

	_, ok := store.Get("a")
	assert.False(t, ok)
}

func TestStore_Stats(t *testing.T) {
	store := New(100)

	store.Put("a", dataset("a"))
	store.Put("b", dataset("b"))

	store.Get("a") // hit
	store.Get("b") // hit
	store.Get("c") // miss

	stats := store.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 100, stats.MaxEntries)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	require.InDelta(t, 0.6667, stats.HitRate, 0.01)
}

func TestStore_UpdateExistingKey(t *testing.T) {
	store := New(8)

	store.Put("a", dataset("old"))
	store.Put("a", dataset("new"))

	got, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, "new", got.Source)

	// Should still only have one entry.
	store.mu.RLock()
	assert.Len(t, store.entries, 1)
	store.mu.RUnlock()
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := New(1000)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := Key([]byte{byte(n)}, "fp")
			store.Put(key, dataset("concurrent"))
			store.Get(key)
		}(i)
	}
	wg.Wait()

	stats := store.Stats()
	assert.LessOrEqual(t, stats.Entries, 1000)
	assert.True(t, stats.Hits+stats.Misses > 0)
}

func TestStore_DefaultCapacity(t *testing.T) {
	store := New(0)
	assert.Equal(t, 8, store.Stats().MaxEntries)
}
