package eta

import (
	"fmt"
	"sync"
	"time"

	"homecare/models"
)

// cacheKeyPrecision rounds coordinates to 5 decimal places (~1 m) so that
// negligible floating noise in either endpoint still hits the same entry.
const cacheKeyPrecision = 1e5

// Key identifies one (origin, destination) pair at fixed precision.
func Key(origin, destination models.Coordinates) string {
	round := func(v float64) float64 {
		if v < 0 {
			return float64(int64(v*cacheKeyPrecision-0.5)) / cacheKeyPrecision
		}
		return float64(int64(v*cacheKeyPrecision+0.5)) / cacheKeyPrecision
	}
	return fmt.Sprintf("%.5f,%.5f_to_%.5f,%.5f",
		round(origin.Lon), round(origin.Lat),
		round(destination.Lon), round(destination.Lat))
}

// Entry is one memoized travel-time result. Entries are never mutated in
// place; a refresh stores a replacement.
type Entry struct {
	Seconds  int
	Source   models.ETASource
	StoredAt time.Time
}

// Cache is a process-wide TTL cache of travel-time results, shared across
// concurrent matching requests. The clock is injectable for tests.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// NewCacheWithClock is for tests that need to control expiry deterministically.
func NewCacheWithClock(ttl time.Duration, now func() time.Time) *Cache {
	c := NewCache(ttl)
	c.now = now
	return c
}

// Get returns the entry for key if present and within the TTL window.
// Expired entries are treated as misses and dropped lazily.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	if c.now().Sub(e.StoredAt) > c.ttl {
		c.mu.Lock()
		// Re-check: a fresh entry may have replaced it meanwhile.
		if cur, still := c.entries[key]; still && cur.StoredAt.Equal(e.StoredAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return Entry{}, false
	}
	return e, true
}

// Put stores a result, replacing any prior entry for the key.
func (c *Cache) Put(key string, seconds int, source models.ETASource) {
	c.mu.Lock()
	c.entries[key] = Entry{Seconds: seconds, Source: source, StoredAt: c.now()}
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
