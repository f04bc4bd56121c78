// Package cache memoizes variant computations for the lifetime of one
// exam-generation run.
package cache

import (
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/abhisek/examgen/internal/variant"
)

// DefaultMaxEntries bounds a cache created with New(0).
const DefaultMaxEntries = 4096

// Key identifies one variant computation.
type Key struct {
	TemplateID int64
	Seed       uint64
}

// Stats reports cache activity.
type Stats struct {
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
	Entries int `json:"entries"`
}

// Cache is a bounded, concurrency-safe variant memo. Create one per run
// and drop it when the run ends.
type Cache struct {
	mu     sync.Mutex
	lru    *lru.Cache
	keys   map[Key]struct{}
	hits   int
	misses int
}

// New creates a Cache holding at most maxEntries variants.
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	c := &Cache{lru: lru.New(maxEntries), keys: map[Key]struct{}{}}
	c.lru.OnEvicted = func(k lru.Key, _ any) {
		delete(c.keys, k.(Key))
	}
	return c
}

// Get returns a copy of the cached variant for k.
func (c *Cache) Get(k Key) (*variant.Variant, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(k)
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return v.(*variant.Variant).Clone(), true
}

// Put stores a copy of v under k.
func (c *Cache) Put(k Key, v *variant.Variant) {
	if c == nil || v == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(k, v.Clone())
}

func (c *Cache) add(k Key, v *variant.Variant) {
	c.lru.Add(k, v)
	c.keys[k] = struct{}{}
}

// Absorb copies every entry of other into c. Counters are unchanged.
func (c *Cache) Absorb(other *Cache) {
	if c == nil || other == nil || c == other {
		return
	}
	other.mu.Lock()
	entries := make(map[Key]*variant.Variant, len(other.keys))
	for k := range other.keys {
		if v, ok := other.lru.Get(k); ok {
			entries[k] = v.(*variant.Variant)
		}
	}
	other.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range entries {
		c.add(k, v.Clone())
	}
}

// GetOrCompute returns the cached variant for k, or computes, stores and
// returns it. Errors are not cached.
func (c *Cache) GetOrCompute(k Key, compute func() (*variant.Variant, error)) (*variant.Variant, error) {
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	c.Put(k, v)
	return v, nil
}

// Clear drops every entry and resets the counters.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Clear()
	c.hits, c.misses = 0, 0
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: c.lru.Len()}
}

// Merge adds the counters of other to s.
func (s Stats) Merge(other Stats) Stats {
	return Stats{
		Hits:    s.Hits + other.Hits,
		Misses:  s.Misses + other.Misses,
		Entries: s.Entries + other.Entries,
	}
}
