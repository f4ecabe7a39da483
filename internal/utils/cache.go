package utils

import (
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheItem wraps cached data with its expiry.
type cacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// GlobalCache is a small TTL layer over an LRU cache, used by handlers for
// hot read paths (post list, leaderboard). Never used inside the services,
// which must always read committed state.
type GlobalCache struct {
	lruCache *lru.Cache[string, cacheItem]
}

var (
	cacheInstance *GlobalCache
	cacheOnce     sync.Once
)

// GetCache returns the singleton cache instance.
func GetCache() *GlobalCache {
	cacheOnce.Do(func() {
		l, err := lru.New[string, cacheItem](500)
		if err != nil {
			log.Fatalf("Failed to create LRU cache: %v", err)
		}
		cacheInstance = &GlobalCache{lruCache: l}
	})
	return cacheInstance
}

// Set stores data under key for the given TTL.
func (c *GlobalCache) Set(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, cacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Get returns the cached data, or nil when missing or expired.
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

// Delete drops a key, used to invalidate after writes.
func (c *GlobalCache) Delete(key string) {
	c.lruCache.Remove(key)
}
