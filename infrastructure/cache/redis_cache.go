package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"yt-latest/domain/model"
	"yt-latest/domain/repository"
	"yt-latest/infrastructure/logger"
)

// NewCache connects to redis at addr and verifies the connection
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       0,
	})
	if err := ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// NewCacheFromURL connects using a redis:// or rediss:// URL
func NewCacheFromURL(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().WithField("addr", client.Options().Addr).WithField("error", err).Warn("Redis ping failed")
		return err
	}
	return nil
}

// RedisLatestVideoCache stores entries as JSON with a native key expiry.
// A nil client turns every operation into a no-op miss.
type RedisLatestVideoCache struct {
	rdb *redis.Client
}

var _ repository.ILatestVideoCache = (*RedisLatestVideoCache)(nil)

func NewRedisLatestVideoCache(rdb *redis.Client) *RedisLatestVideoCache {
	return &RedisLatestVideoCache{rdb: rdb}
}

func (c *RedisLatestVideoCache) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry model.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return &entry, nil
}

func (c *RedisLatestVideoCache) Set(ctx context.Context, entry *model.CacheEntry, ttl time.Duration) error {
	if c.rdb == nil || entry == nil || ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, entry.Key, data, ttl).Err()
}
