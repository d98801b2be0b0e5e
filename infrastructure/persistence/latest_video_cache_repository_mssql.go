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
)

// EnsureLatestVideoCacheSchemaMSSQL creates the payload cache table on MSSQL if not exists
func EnsureLatestVideoCacheSchemaMSSQL(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.latest_video_cache') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.latest_video_cache (
        cache_key NVARCHAR(128) NOT NULL PRIMARY KEY,
        payload NVARCHAR(MAX) NOT NULL,
        expires_at DATETIMEOFFSET NOT NULL,
        updated_at DATETIMEOFFSET NOT NULL
    );
END`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create latest_video_cache table (mssql): %w", err)
	}
	if _, err := db.Exec(`IF NOT EXISTS (SELECT * FROM sys.indexes WHERE name = 'idx_latest_video_cache_expires_at' AND object_id = OBJECT_ID('dbo.latest_video_cache'))
CREATE INDEX idx_latest_video_cache_expires_at ON dbo.latest_video_cache(expires_at)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_latest_video_cache_expires_at (mssql)")
	}
	return nil
}

// LatestVideoCacheRepositoryMSSQL stores rendered payloads in SQL Server
type LatestVideoCacheRepositoryMSSQL struct {
	db *sql.DB
}

var _ repository.ILatestVideoCache = (*LatestVideoCacheRepositoryMSSQL)(nil)

func NewLatestVideoCacheRepositoryMSSQL(db *sql.DB) *LatestVideoCacheRepositoryMSSQL {
	return &LatestVideoCacheRepositoryMSSQL{db: db}
}

func (r *LatestVideoCacheRepositoryMSSQL) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	if r.db == nil {
		return nil, nil
	}
	row := r.db.QueryRowContext(ctx, `SELECT payload, expires_at FROM dbo.latest_video_cache WHERE cache_key=@p1`, key)
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

func (r *LatestVideoCacheRepositoryMSSQL) Set(ctx context.Context, entry *model.CacheEntry, _ time.Duration) error {
	if r.db == nil || entry == nil {
		return nil
	}
	q := `MERGE dbo.latest_video_cache AS target
USING (SELECT @p1 AS cache_key) AS src
ON (target.cache_key = src.cache_key)
WHEN MATCHED THEN UPDATE SET payload=@p2, expires_at=@p3, updated_at=@p4
WHEN NOT MATCHED THEN INSERT (cache_key, payload, expires_at, updated_at)
VALUES (@p1, @p2, @p3, @p4);`
	_, err := r.db.ExecContext(ctx, q, entry.Key, entry.Payload, entry.ExpiresAt.UTC(), time.Now().UTC())
	return err
}
