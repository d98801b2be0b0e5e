package repository

import (
	"context"

	"yt-latest/domain/dto"
)

// IYouTube defines the remote capabilities the latest-video lookup consumes
type IYouTube interface {
	// ResolveUploadsPlaylist maps a channel handle (without "@") to its uploads playlist id.
	// Fails with model.ErrChannelNotFound or model.ErrNetwork. Never retried.
	ResolveUploadsPlaylist(ctx context.Context, handle string) (string, error)
	// ListPlaylistPage fetches one page of playlist items. Fails with model.ErrNetwork.
	ListPlaylistPage(ctx context.Context, req *dto.PlaylistPageRequest) (*dto.PlaylistPage, error)
}
