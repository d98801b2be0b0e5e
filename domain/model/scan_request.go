package model

import (
	"fmt"
	"strings"
	"time"
)

// ScanRequest describes one latest-video lookup. Treat it as immutable once built.
type ScanRequest struct {
	ChannelHandle        string
	Pattern              MatchPattern
	MaxItemsToScan       int
	UseFallbackIfNoMatch bool
	CacheTTL             time.Duration // 0 disables caching
}

// NewScanRequest validates and builds a ScanRequest
func NewScanRequest(handle string, pattern MatchPattern, maxItems int, useFallback bool, cacheTTL time.Duration) (ScanRequest, error) {
	req := ScanRequest{
		ChannelHandle:        strings.TrimSpace(handle),
		Pattern:              pattern,
		MaxItemsToScan:       maxItems,
		UseFallbackIfNoMatch: useFallback,
		CacheTTL:             cacheTTL,
	}
	if err := req.Validate(); err != nil {
		return ScanRequest{}, err
	}
	return req, nil
}

// Validate checks the request before any remote call is made
func (r ScanRequest) Validate() error {
	if !r.Pattern.Compiled() {
		return fmt.Errorf("%w: pattern not compiled", ErrInvalidPattern)
	}
	if strings.TrimLeft(strings.TrimSpace(r.ChannelHandle), "@") == "" {
		return fmt.Errorf("%w: channel handle is required", ErrChannelNotFound)
	}
	if r.MaxItemsToScan < 0 {
		return fmt.Errorf("max items to scan must not be negative, got %d", r.MaxItemsToScan)
	}
	if r.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative, got %s", r.CacheTTL)
	}
	return nil
}
