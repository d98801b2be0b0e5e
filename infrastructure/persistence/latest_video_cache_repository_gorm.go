package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yt-latest/domain/model"
	"yt-latest/domain/repository"
)

// latestVideoCacheRow is the gorm mapping of a cache entry
type latestVideoCacheRow struct {
	CacheKey  string    `gorm:"column:cache_key;primaryKey;size:128"`
	Payload   string    `gorm:"column:payload;type:mediumtext;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;index;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (latestVideoCacheRow) TableName() string {
	return "latest_video_cache"
}

// LatestVideoCacheRepositoryGorm stores rendered payloads through gorm (MySQL)
type LatestVideoCacheRepositoryGorm struct {
	db *gorm.DB
}

var _ repository.ILatestVideoCache = (*LatestVideoCacheRepositoryGorm)(nil)

func NewLatestVideoCacheRepositoryGorm(db *gorm.DB) *LatestVideoCacheRepositoryGorm {
	return &LatestVideoCacheRepositoryGorm{db: db}
}

// AutoMigrate creates or updates the cache table
func (r *LatestVideoCacheRepositoryGorm) AutoMigrate() error {
	if r.db == nil {
		return nil
	}
	return r.db.AutoMigrate(&latestVideoCacheRow{})
}

func (r *LatestVideoCacheRepositoryGorm) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	if r.db == nil {
		return nil, nil
	}
	var row latestVideoCacheRow
	err := r.db.WithContext(ctx).Where("cache_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entry := &model.CacheEntry{Key: row.CacheKey, Payload: row.Payload, ExpiresAt: row.ExpiresAt}
	if entry.Expired(time.Now()) {
		return nil, nil
	}
	return entry, nil
}

func (r *LatestVideoCacheRepositoryGorm) Set(ctx context.Context, entry *model.CacheEntry, _ time.Duration) error {
	if r.db == nil || entry == nil {
		return nil
	}
	row := latestVideoCacheRow{
		CacheKey:  entry.Key,
		Payload:   entry.Payload,
		ExpiresAt: entry.ExpiresAt.UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}
