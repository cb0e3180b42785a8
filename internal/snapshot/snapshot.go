// Package snapshot caches loaded datasets outside the stateless core.
// Entries are keyed by a content hash of the raw bytes plus the load
// profile's fingerprint, so a key can only ever name one record set.
// Invalidation is explicit; there is no TTL.
package snapshot

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/popvault/popdash/internal/model"
	"github.com/popvault/popdash/internal/query"
)

// Dataset bundles everything one load produced. Callers treat it as
// read-only; the query layer never mutates records, so one dataset can
// back any number of concurrent queries.
type Dataset struct {
	Records     []model.Record      `json:"records"`
	Diagnostics model.Diagnostics   `json:"diagnostics"`
	Bounds      query.DatasetBounds `json:"bounds"`
	Source      string              `json:"source"`
	LoadedAt    time.Time           `json:"loaded_at"`
}

// Key derives the cache key for raw bytes loaded under a profile.
// Loading is deterministic, so identical bytes and profile always
// produce identical records.
func Key(raw []byte, profileFingerprint string) string {
	h := sha256.Sum256(raw)
	return fmt.Sprintf("%x:%s", h, profileFingerprint)
}

// Stats contains cache performance counters.
type Stats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// Store is a concurrency-safe snapshot cache with LRU eviction.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]*Dataset
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	hits       atomic.Int64
	misses     atomic.Int64
}

// New creates a Store holding at most maxEntries datasets. A
// non-positive capacity falls back to 8.
func New(maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = 8
	}
	return &Store{
		entries:    make(map[string]*Dataset),
		maxEntries: maxEntries,
	}
}

// Get retrieves a cached dataset. Returns (nil, false) on miss.
func (s *Store) Get(key string) (*Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.entries[key]
	if !ok {
		s.misses.Add(1)
		return nil, false
	}

	s.removeFromOrder(key)
	s.order = append(s.order, key)
	s.hits.Add(1)
	return ds, true
}

// Put stores a dataset, evicting the least recently used entry when at
// capacity.
func (s *Store) Put(key string, ds *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; ok {
		s.entries[key] = ds
		s.removeFromOrder(key)
		s.order = append(s.order, key)
		return
	}

	for len(s.entries) >= s.maxEntries && len(s.order) > 0 {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
	}

	s.entries[key] = ds
	s.order = append(s.order, key)
}

// Invalidate removes one key.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return
	}
	delete(s.entries, key)
	s.removeFromOrder(key)
}

// Reset drops every entry.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*Dataset)
	s.order = nil
}

// Stats returns cache performance counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	entries := len(s.entries)
	maxEntries := s.maxEntries
	s.mu.RUnlock()

	hits := s.hits.Load()
	misses := s.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Entries:    entries,
		MaxEntries: maxEntries,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}

func (s *Store) removeFromOrder(key string) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
