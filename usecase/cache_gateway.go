package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"yt-latest/domain/model"
	"yt-latest/domain/repository"
	"yt-latest/infrastructure/logger"
	"yt-latest/infrastructure/metrics"
	"yt-latest/infrastructure/utils"
)

const cacheKeyPrefix = "yt_latest_"

// sharedPipelineTimeout bounds a pipeline run that outlives the caller who started it
const sharedPipelineTimeout = 2 * time.Minute

// Renderer turns a lookup result into the payload handed to the caller
type Renderer interface {
	// Name identifies the output format; it is part of the cache key.
	Name() string
	Render(req model.ScanRequest, result model.ScanResult) (string, error)
}

// latestVideoFinder is the uncached pipeline
type latestVideoFinder interface {
	FindLatestMatchingVideo(ctx context.Context, req model.ScanRequest) (model.ScanResult, error)
}

// CacheGateway wraps resolve+scan+select+render behind a keyed, TTL-bounded cache.
// Reads never extend an entry's TTL.
type CacheGateway struct {
	finder latestVideoFinder
	store  repository.ILatestVideoCache
	now    func() time.Time
	group  singleflight.Group
}

// NewCacheGateway creates a gateway; a nil store disables caching
func NewCacheGateway(finder latestVideoFinder, store repository.ILatestVideoCache) *CacheGateway {
	return &CacheGateway{finder: finder, store: store, now: utils.GetCurrentTime}
}

// WithClock replaces the time source (fluent)
func (g *CacheGateway) WithClock(now func() time.Time) *CacheGateway {
	g.now = now
	return g
}

// CacheKey is a stable hash of the normalized request and the output format
func CacheKey(req model.ScanRequest, format string) string {
	normalized := strings.Join([]string{
		strings.ToLower(NormalizeHandle(req.ChannelHandle)),
		req.Pattern.Text(),
		strconv.Itoa(req.MaxItemsToScan),
		strconv.FormatBool(req.UseFallbackIfNoMatch),
		format,
	}, "\x1f")
	return cacheKeyPrefix + utils.SHA256Hex(normalized)
}

// Fetch returns the rendered payload for req, from cache when a valid entry exists.
// Failures, partial scans and not-found results are never stored.
func (g *CacheGateway) Fetch(ctx context.Context, req model.ScanRequest, renderer Renderer) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if req.CacheTTL <= 0 || g.store == nil {
		metrics.CacheLookups.WithLabelValues("bypass").Inc()
		payload, _, err := g.compute(ctx, req, renderer)
		return payload, err
	}

	key := CacheKey(req, renderer.Name())
	if entry := g.lookup(ctx, key); entry != nil {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return entry.Payload, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	// concurrent misses on one key share a single pipeline run. The run is detached
	// from the leader's cancellation; every caller waits on its own context.
	ch := g.group.DoChan(key, func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedPipelineTimeout)
		defer cancel()

		payload, result, err := g.compute(runCtx, req, renderer)
		if err != nil {
			return nil, err
		}
		if result.Found() && !result.Partial {
			g.save(runCtx, key, payload, req.CacheTTL)
		}
		return sharedRun{payload: payload, result: result}, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		run := res.Val.(sharedRun)
		if run.result.Found() {
			return run.payload, nil
		}
		// not-found payloads echo the caller's own input
		payload, err := renderer.Render(req, run.result)
		if err != nil {
			return "", fmt.Errorf("failed to render %s payload: %w", renderer.Name(), err)
		}
		return payload, nil
	}
}

type sharedRun struct {
	payload string
	result  model.ScanResult
}

func (g *CacheGateway) compute(ctx context.Context, req model.ScanRequest, renderer Renderer) (string, model.ScanResult, error) {
	result, err := g.finder.FindLatestMatchingVideo(ctx, req)
	if err != nil {
		return "", model.ScanResult{}, err
	}
	payload, err := renderer.Render(req, result)
	if err != nil {
		return "", model.ScanResult{}, fmt.Errorf("failed to render %s payload: %w", renderer.Name(), err)
	}
	return payload, result, nil
}

func (g *CacheGateway) lookup(ctx context.Context, key string) *model.CacheEntry {
	entry, err := g.store.Get(ctx, key)
	if err != nil {
		logger.GetLogger().WithField("key", key).WithField("error", err).Warn("Cache read failed, treating as miss")
		return nil
	}
	if entry == nil || entry.Expired(g.now()) {
		return nil
	}
	return entry
}

func (g *CacheGateway) save(ctx context.Context, key, payload string, ttl time.Duration) {
	entry := &model.CacheEntry{
		Key:       key,
		Payload:   payload,
		ExpiresAt: g.now().Add(ttl),
	}
	if err := g.store.Set(ctx, entry, ttl); err != nil {
		logger.GetLogger().WithField("key", key).WithField("error", err).Warn("Cache write failed")
	}
}
