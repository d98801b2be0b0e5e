package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"yt-latest/domain/dto"
	"yt-latest/domain/repository"
	"yt-latest/infrastructure/cache"
	youtubeclient "yt-latest/infrastructure/clients/youtube"
	"yt-latest/infrastructure/configuration"
	"yt-latest/infrastructure/logger"
	"yt-latest/infrastructure/persistence"
	"yt-latest/usecase"
)

const memoryCleanupInterval = 10 * time.Minute

// expiredPurger is implemented by stores that need periodic cleanup
type expiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type cacheStore struct {
	store  repository.ILatestVideoCache
	driver string
	close  func()
}

// newLatestVideoUseCase returns nil when no API key is configured
func newLatestVideoUseCase(ctx context.Context, store repository.ILatestVideoCache) (usecase.ILatestVideoUseCase, error) {
	cfg := configuration.C.YouTube
	if cfg.APIKey == "" {
		logger.GetLogger().Warn("YOUTUBE_API_KEY not set - latest video lookups are disabled")
		return nil, nil
	}
	youtubeRepo, err := youtubeclient.NewYouTubeClient(ctx, &youtubeclient.Config{
		APIKey:         cfg.APIKey,
		RequestTimeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("init youtube client: %w", err)
	}
	return usecase.NewLatestVideoUseCase(youtubeRepo, store), nil
}

func latestVideoDefaults() dto.LatestVideoDefaults {
	lv := configuration.C.LatestVideo
	return dto.LatestVideoDefaults{
		CacheSeconds:   lv.CacheSeconds,
		MaxSearches:    lv.MaxSearches,
		ShowLastIfNone: lv.ShowLastIfNone,
	}
}

// newCacheStore opens the configured store. Any connection failure falls back to memory.
func newCacheStore(ctx context.Context, driver string) cacheStore {
	driver = strings.ToLower(strings.TrimSpace(driver))
	s, err := openCacheStore(ctx, driver)
	if err != nil {
		logger.GetLogger().WithField("driver", driver).WithField("error", err).Warn("Cache store not available - falling back to memory")
		return cacheStore{store: cache.NewMemoryLatestVideoCache(memoryCleanupInterval), driver: "memory", close: func() {}}
	}
	logger.GetLogger().WithField("driver", s.driver).Info("Cache store ready")
	return s
}

func openCacheStore(ctx context.Context, driver string) (cacheStore, error) {
	switch driver {
	case "", "memory":
		return cacheStore{store: cache.NewMemoryLatestVideoCache(memoryCleanupInterval), driver: "memory", close: func() {}}, nil

	case "none":
		return cacheStore{driver: "none", close: func() {}}, nil

	case "redis":
		rc := configuration.C.RedisClient
		var (
			client interface{ Close() error }
			store  repository.ILatestVideoCache
		)
		if rc.URL != "" {
			rdb, err := cache.NewCacheFromURL(ctx, rc.URL)
			if err != nil {
				return cacheStore{}, err
			}
			client, store = rdb, cache.NewRedisLatestVideoCache(rdb)
		} else {
			rdb, err := cache.NewCache(ctx, fmt.Sprintf("%s:%s", rc.Host, rc.Port), rc.Username, rc.Password)
			if err != nil {
				return cacheStore{}, err
			}
			client, store = rdb, cache.NewRedisLatestVideoCache(rdb)
		}
		return cacheStore{store: store, driver: driver, close: func() { _ = client.Close() }}, nil

	case "postgres":
		db, err := persistence.NewPostgreSQLDB()
		if err != nil {
			return cacheStore{}, err
		}
		if err := persistence.EnsureLatestVideoCacheSchema(db); err != nil {
			_ = db.Close()
			return cacheStore{}, err
		}
		return cacheStore{store: persistence.NewLatestVideoCacheRepository(db), driver: driver, close: func() { _ = db.Close() }}, nil

	case "mssql":
		db, err := persistence.NewMSSQLDB()
		if err != nil {
			return cacheStore{}, err
		}
		if err := persistence.EnsureLatestVideoCacheSchemaMSSQL(db); err != nil {
			_ = db.Close()
			return cacheStore{}, err
		}
		return cacheStore{store: persistence.NewLatestVideoCacheRepositoryMSSQL(db), driver: driver, close: func() { _ = db.Close() }}, nil

	case "mysql":
		db, err := persistence.NewMySQLGormDB()
		if err != nil {
			return cacheStore{}, err
		}
		repo := persistence.NewLatestVideoCacheRepositoryGorm(db)
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		if err := repo.AutoMigrate(); err != nil {
			closeFn()
			return cacheStore{}, err
		}
		return cacheStore{store: repo, driver: driver, close: closeFn}, nil

	case "mongo":
		mc := configuration.C.Database.Mongo
		client, err := persistence.NewMongoDb(mc.Host, mc.Port, mc.User, mc.Password, mc.Name)
		if err != nil {
			return cacheStore{}, err
		}
		repo := persistence.NewLatestVideoCacheRepositoryMongo(client, mc.Name)
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Warn("failed creating latest_video_cache TTL index")
		}
		return cacheStore{store: repo, driver: driver, close: func() { _ = client.Disconnect(context.Background()) }}, nil

	default:
		return cacheStore{}, fmt.Errorf("unknown cache driver %q", driver)
	}
}
