package cache

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/highway-survey-etl/internal/domain"
	"github.com/couchcryptid/highway-survey-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// CachedFinder wraps a SegmentFinder with an in-memory LRU cache keyed by
// highway. Entries expire after ttl so a fresh import becomes visible
// without a restart.
type CachedFinder struct {
	inner   domain.SegmentFinder
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedFinder creates a cache decorator around a finder.
func NewCachedFinder(inner domain.SegmentFinder, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedFinder {
	return &CachedFinder{
		inner:   inner,
		cache:   newLRUCache(maxEntries, ttl, clock),
		metrics: metrics,
	}
}

// FindByHighway returns the cached segments of highway or loads them from the
// inner finder. Returned slices are shared between callers and must not be
// modified.
func (c *CachedFinder) FindByHighway(ctx context.Context, highway string) ([]domain.Segment, error) {
	if segments, ok := c.cache.get(highway); ok {
		c.metrics.QueryCache.WithLabelValues("hit").Inc()
		return segments, nil
	}
	c.metrics.QueryCache.WithLabelValues("miss").Inc()

	segments, err := c.inner.FindByHighway(ctx, highway)
	if err != nil {
		return nil, err
	}
	// Only cache non-empty results so a highway imported later is found.
	if len(segments) > 0 {
		c.cache.put(highway, segments)
	}
	return segments, nil
}

// lruCache is a thread-safe LRU cache with per-entry expiry.
type lruCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key     string
	value   []domain.Segment
	expires time.Time
	prev    *entry
	next    *entry
}

func newLRUCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.Segment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && !c.clock.Now().Before(e.expires) {
		delete(c.entries, key)
		c.remove(e)
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []domain.Segment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expires = expires
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expires: expires}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
