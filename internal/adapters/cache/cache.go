// Package cache provides a bounded TTL cache scoped to a single analysis run.
// Callers create one per run and pass it to the collaborators that need it.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/gametaste/pkg/metrics"
)

// node is an entry in insertion order; head is the newest.
type node[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
	prev    *node[K, V]
	next    *node[K, V]
}

// Cache is a concurrency-safe TTL cache with oldest-first eviction.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*node[K, V]
	head    *node[K, V]
	tail    *node[K, V]
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	loads   singleflight.Group
}

// New creates an empty cache.
func New[K comparable, V any](opts ...Option) *Cache[K, V] {
	s := settings{ttl: defaultTTL, maxSize: defaultMaxSize, now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return &Cache[K, V]{
		entries: make(map[K]*node[K, V]),
		ttl:     s.ttl,
		maxSize: s.maxSize,
		now:     s.now,
	}
}

// Get returns the value for key if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if ok && c.now().Before(n.expires) {
		metrics.RecordCacheHit()
		return n.value, true
	}
	if ok {
		c.unlink(n)
	}
	metrics.RecordCacheMiss()
	var zero V
	return zero, false
}

// Set stores value under key, replacing any previous entry.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.unlink(old)
	}
	for len(c.entries) >= c.maxSize && c.tail != nil {
		c.unlink(c.tail)
		metrics.RecordCacheEviction()
	}

	n := &node[K, V]{key: key, value: value, expires: c.now().Add(c.ttl), next: c.head}
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
	c.entries[key] = n
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Errors are not cached. Concurrent callers for the same key share one load,
// run with the first caller's context. Keys must format uniquely with %v.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, key K, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	res, err, _ := c.loads.Do(fmt.Sprint(key), func() (any, error) {
		// a load that finished while we waited for the group already filled the entry
		if v, ok := c.peek(key); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		c.Set(key, v)
		return v, nil
	})
	v, _ := res.(V)
	return v, err
}

// peek is Get without metrics.
func (c *Cache[K, V]) peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.entries[key]; ok && c.now().Before(n.expires) {
		return n.value, true
	}
	var zero V
	return zero, false
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// unlink removes n from the list and the map. Must be called with c.mu held.
func (c *Cache[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
	delete(c.entries, n.key)
}
