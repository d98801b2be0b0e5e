package model

import "time"

// VideoItem represents one entry of a channel's uploads playlist
type VideoItem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	PositionHint int64     `json:"position_hint"` // ordinal in the uploads playlist, 0 is the newest
	PublishedAt  time.Time `json:"published_at"`
}

// ScanResult is the outcome of a latest-video lookup.
// Matched=false with a non-nil Video means the most recent upload was returned as fallback.
// A nil Video means nothing was found.
type ScanResult struct {
	Video   *VideoItem `json:"video,omitempty"`
	Matched bool       `json:"matched"`
	// Partial is set when a page request failed mid-scan and the result was
	// built from the pages fetched before the failure.
	Partial bool `json:"partial,omitempty"`
}

// Found reports whether the result carries a video
func (r ScanResult) Found() bool {
	return r.Video != nil
}
