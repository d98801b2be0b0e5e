package repository

import (
	"context"
	"time"

	"yt-latest/domain/model"
)

// ILatestVideoCache defines a key-value store for rendered lookup results
type ILatestVideoCache interface {
	// Get returns the entry stored under key, or nil, nil on a miss.
	// Stores may return an already expired entry; callers check ExpiresAt.
	Get(ctx context.Context, key string) (*model.CacheEntry, error)
	// Set stores the entry; ttl mirrors entry.ExpiresAt for stores with native expiry.
	Set(ctx context.Context, entry *model.CacheEntry, ttl time.Duration) error
}
