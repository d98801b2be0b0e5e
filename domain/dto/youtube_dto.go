package dto

import "yt-latest/domain/model"

// PlaylistPageRequest represents one page request against a playlist
type PlaylistPageRequest struct {
	PlaylistID string `json:"playlist_id"`
	PageSize   int64  `json:"page_size"`            // at most 50, the API ceiling
	PageToken  string `json:"page_token,omitempty"` // empty for the first page
}

// PlaylistPage represents one page of playlist items in API order (newest first)
type PlaylistPage struct {
	Items         []model.VideoItem `json:"items"`
	NextPageToken string            `json:"next_page_token,omitempty"`
	// RawCount is how many entries upstream returned, including unavailable
	// ones that were dropped from Items. Zero means len(Items).
	RawCount int `json:"raw_count,omitempty"`
}

// Examined is the number of upstream entries this page consumed
func (p *PlaylistPage) Examined() int {
	return max(p.RawCount, len(p.Items))
}
