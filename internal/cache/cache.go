package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vendry-cloud/vendry/internal/domain/search/result"
)

// Default cache policy. Overridable per deployment via config.
const (
	DefaultTTL      = 60 * time.Second
	DefaultCapacity = 512
)

// Entry is a cached, logically immutable snapshot of a search result set.
type Entry struct {
	Fingerprint string
	Results     []result.Ranked
	ComputedAt  time.Time
	ExpiresAt   time.Time
}

// QueryCache is a bounded in-process cache of complete search results,
// keyed by query fingerprint. A single mutex guards the map and the LRU
// list; operations are O(1) and short-lived. An entry is never returned
// past its expiry: expired entries are evicted lazily on Get, and the
// least-recently-used entry is evicted when capacity is reached.
type QueryCache struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	lru      *list.List // front = most recently used
	ttl      time.Duration
	capacity int

	hitTotal *prometheus.CounterVec

	now func() time.Time // injectable for tests
}

// New creates a QueryCache. ttl <= 0 and capacity <= 0 fall back to the
// defaults. hitTotal is a counter vec with label "result" ("hit"/"miss"),
// passed explicitly; nil disables metrics.
func New(ttl time.Duration, capacity int, hitTotal *prometheus.CounterVec) *QueryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &QueryCache{
		entries:  make(map[string]*list.Element, capacity),
		lru:      list.New(),
		ttl:      ttl,
		capacity: capacity,
		hitTotal: hitTotal,
		now:      time.Now,
	}
}

// Get returns the entry for the fingerprint if present and unexpired.
// An expired entry is treated as absent and removed.
func (c *QueryCache) Get(fingerprint string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[fingerprint]
	if !ok {
		c.incCounter("miss")
		return Entry{}, false
	}

	entry := el.Value.(Entry)
	if !c.now().Before(entry.ExpiresAt) {
		c.removeLocked(el)
		c.incCounter("miss")
		return Entry{}, false
	}

	c.lru.MoveToFront(el)
	c.incCounter("hit")
	return entry, true
}

// Put inserts or overwrites the entry for the fingerprint with
// expiry now+ttl, evicting the least-recently-used entry at capacity.
func (c *QueryCache) Put(fingerprint string, results []result.Ranked) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry := Entry{
		Fingerprint: fingerprint,
		Results:     results,
		ComputedAt:  now,
		ExpiresAt:   now.Add(c.ttl),
	}

	if el, ok := c.entries[fingerprint]; ok {
		el.Value = entry
		c.lru.MoveToFront(el)
		return
	}

	for c.lru.Len() >= c.capacity {
		c.removeLocked(c.lru.Back())
	}

	c.entries[fingerprint] = c.lru.PushFront(entry)
}

// Invalidate removes every entry whose fingerprint matches the predicate.
// Returns the number of entries removed.
func (c *QueryCache) Invalidate(predicate func(fingerprint string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for fp, el := range c.entries {
		if predicate(fp) {
			c.removeLocked(el)
			removed++
		}
	}
	return removed
}

// InvalidateAll drops every entry. Called by the vendor write path when
// underlying data changes materially; TTL-only deployments skip it.
func (c *QueryCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element, c.capacity)
	c.lru.Init()
}

// Len returns the number of entries currently held, expired or not.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *QueryCache) removeLocked(el *list.Element) {
	entry := el.Value.(Entry)
	delete(c.entries, entry.Fingerprint)
	c.lru.Remove(el)
}

func (c *QueryCache) incCounter(outcome string) {
	if c.hitTotal != nil {
		c.hitTotal.WithLabelValues(outcome).Inc()
	}
}
