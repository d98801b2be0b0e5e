package model

import "time"

// CacheEntry is a rendered lookup result stored under a request key
type CacheEntry struct {
	Key       string    `json:"key"`
	Payload   string    `json:"payload"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is no longer valid at now
func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
