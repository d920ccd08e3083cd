package plan

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/santa/internal/ports"
)

// DefaultCacheTTL is the default freshness window for a cached installed
// set (§4.I).
const DefaultCacheTTL = 300 * time.Second

// DefaultCacheCapacity is the default maximum number of cached sources.
const DefaultCacheCapacity = 1000

type cacheEntry struct {
	source   string
	packages []string
	storedAt time.Time
}

// Cache is a bounded, TTL-expiring store mapping source name to its
// last-known installed-package list (§4.I). Reads and writes are
// serialized by a single mutex: the cache holds at most Capacity small
// entries and every operation is O(1), so per-entry striping would add
// complexity without a measurable concurrency win.
type Cache struct {
	mu        sync.Mutex
	ttl       time.Duration
	capacity  int
	entries   map[string]*list.Element
	order     *list.List
	logger    ports.Logger
	evictions int
}

// NewCache creates a Cache. ttl <= 0 and capacity <= 0 fall back to the
// package defaults.
func NewCache(ttl time.Duration, capacity int, logger ports.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		logger:   logger,
	}
}

// Get returns the cached installed set for source if present and not
// expired, marking it most-recently-used.
func (c *Cache) Get(source string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[source]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if time.Since(entry.storedAt) > c.ttl {
		c.removeLocked(el)
		return nil, false
	}
	c.order.MoveToFront(el)

	out := make([]string, len(entry.packages))
	copy(out, entry.packages)
	return out, true
}

// Put stores packages as source's installed set, evicting the
// least-recently-used entry if this insertion pushes the cache over
// capacity, and logging a warning once the cache reaches 80% capacity.
func (c *Cache) Put(ctx context.Context, source string, packages []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]string, len(packages))
	copy(stored, packages)
	entry := &cacheEntry{source: source, packages: stored, storedAt: time.Now()}

	if el, ok := c.entries[source]; ok {
		el.Value = entry
		c.order.MoveToFront(el)
	} else {
		el := c.order.PushFront(entry)
		c.entries[source] = el
	}

	if len(c.entries) > c.capacity {
		c.evictLocked(ctx)
	}
	if c.logger != nil && c.capacity > 0 && len(c.entries)*5 >= c.capacity*4 {
		c.logger.Warn(ctx, "installed-set cache nearing capacity",
			ports.F("size", len(c.entries)), ports.F("capacity", c.capacity))
	}
}

// Invalidate removes source's cached entry, if any.
func (c *Cache) Invalidate(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[source]; ok {
		c.removeLocked(el)
	}
}

// Clear removes every cached entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order = list.New()
}

func (c *Cache) evictLocked(ctx context.Context) {
	el := c.order.Back()
	if el == nil {
		return
	}
	entry := el.Value.(*cacheEntry)
	c.removeLocked(el)
	c.evictions++
	if c.logger != nil {
		c.logger.Info(ctx, "evicted installed-set cache entry",
			ports.F("source", entry.source), ports.F("total_evictions", c.evictions))
	}
}

func (c *Cache) removeLocked(el *list.Element) {
	entry := el.Value.(*cacheEntry)
	delete(c.entries, entry.source)
	c.order.Remove(el)
}
