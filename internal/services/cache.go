package services

import (
	"sync"
	"time"
)

// Generic in-memory cache with type safety. Entries live for ttl and are
// swept periodically until Close is called. Nothing survives a restart.
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]*cacheItem[V]
	ttl   time.Duration
	now   func() time.Time
	done  chan struct{}
	once  sync.Once
}

type cacheItem[V any] struct {
	value      V
	expiration time.Time
}

func NewCache[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	c := &Cache[K, V]{
		items: make(map[K]*cacheItem[V]),
		ttl:   ttl,
		now:   time.Now,
		done:  make(chan struct{}),
	}

	// Start cleanup goroutine
	go c.cleanup(5 * time.Minute)

	return c
}

// Enabled reports whether entries are kept at all. A zero ttl disables
// the cache.
func (c *Cache[K, V]) Enabled() bool {
	return c != nil && c.ttl > 0
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V
	if !c.Enabled() {
		return zero, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || c.now().After(item.expiration) {
		return zero, false
	}

	return item.value, true
}

func (c *Cache[K, V]) Set(key K, value V) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem[V]{
		value:      value,
		expiration: c.now().Add(c.ttl),
	}
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Purge drops every entry.
func (c *Cache[K, V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.items)
	c.items = make(map[K]*cacheItem[V])
	return n
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the cleanup goroutine.
func (c *Cache[K, V]) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Cache[K, V]) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Cache[K, V]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiration) {
			delete(c.items, key)
		}
	}
}
