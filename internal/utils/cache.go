package utils

import (
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem wraps cached data with its expiry time and an optional
// eviction hook for entries that own resources outside the cache.
type CacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
	OnEvict   func(data interface{})
}

// GlobalCache is the in-process cache; simulation results live here
// keyed by run id so results pages do not re-run the solver.
type GlobalCache struct {
	lruCache *lru.Cache[string, CacheItem]
}

var cacheInstance *GlobalCache

// GetCache returns the singleton cache instance.
func GetCache() *GlobalCache {
	if cacheInstance == nil {
		l, err := lru.NewWithEvict(128, func(key string, item CacheItem) {
			if item.OnEvict != nil {
				item.OnEvict(item.Data)
			}
		})
		if err != nil {
			log.Fatalf("Failed to create LRU cache: %v", err)
		}
		cacheInstance = &GlobalCache{
			lruCache: l,
		}
	}
	return cacheInstance
}

// Set stores a value with a TTL.
func (c *GlobalCache) Set(key string, data interface{}, ttl time.Duration) {
	c.SetWithEvict(key, data, ttl, nil)
}

// SetWithEvict stores a value with a TTL and a hook that runs when the
// entry leaves the cache, whether by LRU pressure, expiry or Delete.
func (c *GlobalCache) SetWithEvict(key string, data interface{}, ttl time.Duration, onEvict func(data interface{})) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
		OnEvict:   onEvict,
	})
}

// Get returns the cached value, or nil when absent or expired.
// Expired entries are removed, which fires their eviction hook.
func (c *GlobalCache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}

	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}

	return val.Data
}

// Delete removes a key, firing its eviction hook.
func (c *GlobalCache) Delete(key string) {
	c.lruCache.Remove(key)
}

// PurgeExpired removes every expired entry, firing eviction hooks.
// Without this sweep an expired entry lingers until a Get touches it
// or LRU pressure pushes it out.
func (c *GlobalCache) PurgeExpired() {
	now := time.Now()
	for _, key := range c.lruCache.Keys() {
		if item, ok := c.lruCache.Peek(key); ok && now.After(item.ExpiresAt) {
			c.lruCache.Remove(key)
		}
	}
}
