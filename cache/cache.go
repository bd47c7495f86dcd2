// Package cache 提供一个小型泛型 TTL 缓存。
//
// 采购单一经持久化即不可变，读路径可以安全缓存；条目按写入时间过期，
// 超出容量时淘汰最旧的条目。读多写少、条目量小，不需要完整的 LRU 链表。
package cache

import (
	"sync"
	"time"
)

// Cache 泛型 TTL 缓存，并发安全
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int
	items   map[K]entry[V]
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// New 创建缓存。ttl 为零表示永不过期；maxSize 为零表示不限容量。
func New[K comparable, V any](ttl time.Duration, maxSize int) *Cache[K, V] {
	return &Cache[K, V]{
		ttl:     ttl,
		maxSize: maxSize,
		items:   make(map[K]entry[V]),
	}
}

// Get 获取缓存值；过期条目视为未命中并被惰性删除
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if c.ttl > 0 && time.Since(e.storedAt) > c.ttl {
		c.mu.Lock()
		// 重新检查：期间可能已被覆盖写入
		if cur, still := c.items[key]; still && cur.storedAt.Equal(e.storedAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set 写入缓存，必要时先淘汰最旧条目
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize > 0 && len(c.items) >= c.maxSize {
		if _, exists := c.items[key]; !exists {
			c.evictOldestLocked()
		}
	}
	c.items[key] = entry[V]{value: value, storedAt: time.Now()}
}

// Delete 删除指定条目
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len 当前条目数
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache[K, V]) evictOldestLocked() {
	var (
		oldestKey K
		oldestAt  time.Time
		found     bool
	)
	for k, e := range c.items {
		if !found || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.storedAt, true
		}
	}
	if found {
		delete(c.items, oldestKey)
	}
}
