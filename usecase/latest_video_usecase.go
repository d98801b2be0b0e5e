package usecase

import (
	"context"

	"yt-latest/domain/model"
	"yt-latest/domain/repository"
	"yt-latest/infrastructure/logger"
	"yt-latest/infrastructure/metrics"
)

// ILatestVideoUseCase defines the latest matching video lookups
type ILatestVideoUseCase interface {
	// FindLatestMatchingVideo runs resolve, scan and select without caching.
	FindLatestMatchingVideo(ctx context.Context, req model.ScanRequest) (model.ScanResult, error)
	// FindLatestMatchingVideoCached returns the rendered payload, served from cache when possible.
	FindLatestMatchingVideoCached(ctx context.Context, req model.ScanRequest, renderer Renderer) (string, error)
}

// LatestVideoUseCase implements ILatestVideoUseCase
type LatestVideoUseCase struct {
	resolver *ChannelResolver
	scanner  *UploadsScanner
	gateway  *CacheGateway
}

// NewLatestVideoUseCase creates a new latest video use case; cache may be nil
func NewLatestVideoUseCase(youtubeRepo repository.IYouTube, cache repository.ILatestVideoCache) *LatestVideoUseCase {
	u := &LatestVideoUseCase{
		resolver: NewChannelResolver(youtubeRepo),
		scanner:  NewUploadsScanner(youtubeRepo),
	}
	u.gateway = NewCacheGateway(u, cache)
	return u
}

// Gateway exposes the cache gateway, e.g. to swap its clock
func (u *LatestVideoUseCase) Gateway() *CacheGateway {
	return u.gateway
}

// FindLatestMatchingVideo resolves the channel once, scans its uploads and selects the result
func (u *LatestVideoUseCase) FindLatestMatchingVideo(ctx context.Context, req model.ScanRequest) (model.ScanResult, error) {
	if err := req.Validate(); err != nil {
		return model.ScanResult{}, err
	}
	if req.MaxItemsToScan == 0 {
		metrics.ScanOutcomes.WithLabelValues("empty").Inc()
		return model.ScanResult{}, nil
	}

	playlistID, err := u.resolver.Resolve(ctx, req.ChannelHandle)
	if err != nil {
		return model.ScanResult{}, err
	}

	outcome, err := u.scanner.Scan(ctx, playlistID, req.Pattern, req.MaxItemsToScan)
	if err != nil {
		return model.ScanResult{}, err
	}

	result := SelectResult(outcome, req.UseFallbackIfNoMatch)
	label := "empty"
	switch {
	case result.Matched:
		label = "matched"
	case result.Found():
		label = "fallback"
	}
	metrics.ScanOutcomes.WithLabelValues(label).Inc()

	logger.GetLogger().WithFields(map[string]interface{}{
		"handle":  req.ChannelHandle,
		"pattern": req.Pattern.Text(),
		"scanned": outcome.Scanned,
		"pages":   outcome.Pages,
		"outcome": label,
		"partial": outcome.Partial,
	}).Info("Latest video scan finished")
	return result, nil
}

// FindLatestMatchingVideoCached renders the result with renderer through the cache gateway
func (u *LatestVideoUseCase) FindLatestMatchingVideoCached(ctx context.Context, req model.ScanRequest, renderer Renderer) (string, error) {
	return u.gateway.Fetch(ctx, req, renderer)
}
