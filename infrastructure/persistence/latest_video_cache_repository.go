package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"yt-latest/domain/model"
	"yt-latest/domain/repository"
	"yt-latest/infrastructure/logger"
	"yt-latest/infrastructure/utils"
)

// EnsureLatestVideoCacheSchema creates the payload cache table if not exists
func EnsureLatestVideoCacheSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS latest_video_cache (
        cache_key TEXT PRIMARY KEY,
        payload TEXT NOT NULL,
        expires_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create latest_video_cache table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_latest_video_cache_expires_at ON latest_video_cache(expires_at)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_latest_video_cache_expires_at")
	}
	return nil
}

// LatestVideoCacheRepository stores rendered payloads in PostgreSQL
type LatestVideoCacheRepository struct{ db *sql.DB }

var _ repository.ILatestVideoCache = (*LatestVideoCacheRepository)(nil)

func NewLatestVideoCacheRepository(db *sql.DB) *LatestVideoCacheRepository {
	return &LatestVideoCacheRepository{db: db}
}

// Get returns the entry for key; expired rows are a miss
func (r *LatestVideoCacheRepository) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	if r.db == nil {
		return nil, nil
	}
	row := r.db.QueryRowContext(ctx, `SELECT payload, expires_at FROM latest_video_cache WHERE cache_key=$1`, key)
	entry := model.CacheEntry{Key: key}
	if err := row.Scan(&entry.Payload, &entry.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if entry.Expired(time.Now()) {
		return nil, nil
	}
	return &entry, nil
}

// Set upserts the entry; ttl is already folded into entry.ExpiresAt
func (r *LatestVideoCacheRepository) Set(ctx context.Context, entry *model.CacheEntry, _ time.Duration) error {
	if r.db == nil || entry == nil {
		return nil
	}
	q := `INSERT INTO latest_video_cache(cache_key, payload, expires_at, updated_at)
          VALUES ($1,$2,$3,$4)
          ON CONFLICT (cache_key) DO UPDATE SET payload=EXCLUDED.payload, expires_at=EXCLUDED.expires_at, updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, entry.Key, entry.Payload, entry.ExpiresAt.UTC(), utils.GetCurrentTime())
	return err
}

// PurgeExpired deletes rows past their expiry and returns how many were removed
func (r *LatestVideoCacheRepository) PurgeExpired(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM latest_video_cache WHERE expires_at <= $1`, utils.GetCurrentTime())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
