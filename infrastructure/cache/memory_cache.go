package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"yt-latest/domain/model"
	"yt-latest/domain/repository"
)

// MemoryLatestVideoCache keeps rendered payloads in process memory
type MemoryLatestVideoCache struct {
	cache *gocache.Cache
}

var _ repository.ILatestVideoCache = (*MemoryLatestVideoCache)(nil)

// NewMemoryLatestVideoCache creates an in-process store; expired items are purged every cleanupInterval
func NewMemoryLatestVideoCache(cleanupInterval time.Duration) *MemoryLatestVideoCache {
	return &MemoryLatestVideoCache{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (c *MemoryLatestVideoCache) Get(_ context.Context, key string) (*model.CacheEntry, error) {
	item, found := c.cache.Get(key)
	if !found {
		return nil, nil
	}
	entry, ok := item.(model.CacheEntry)
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (c *MemoryLatestVideoCache) Set(_ context.Context, entry *model.CacheEntry, ttl time.Duration) error {
	if entry == nil || ttl <= 0 {
		return nil
	}
	c.cache.Set(entry.Key, *entry, ttl)
	return nil
}

// ItemCount returns the number of stored entries, expired ones included until purged
func (c *MemoryLatestVideoCache) ItemCount() int {
	return c.cache.ItemCount()
}
