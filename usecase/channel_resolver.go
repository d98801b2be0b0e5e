package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"yt-latest/domain/model"
	"yt-latest/domain/repository"
)

// ChannelResolver maps a channel handle to its uploads playlist id
type ChannelResolver struct {
	youtubeRepo repository.IYouTube
}

// NewChannelResolver creates a new channel resolver
func NewChannelResolver(youtubeRepo repository.IYouTube) *ChannelResolver {
	return &ChannelResolver{youtubeRepo: youtubeRepo}
}

// NormalizeHandle trims whitespace and leading "@" characters
func NormalizeHandle(handle string) string {
	return strings.TrimLeft(strings.TrimSpace(handle), "@")
}

// Resolve performs exactly one remote lookup. Errors are model.ErrChannelNotFound or model.ErrNetwork.
func (r *ChannelResolver) Resolve(ctx context.Context, handle string) (string, error) {
	normalized := NormalizeHandle(handle)
	if normalized == "" {
		return "", fmt.Errorf("%w: empty handle", model.ErrChannelNotFound)
	}

	playlistID, err := r.youtubeRepo.ResolveUploadsPlaylist(ctx, normalized)
	if err != nil {
		if errors.Is(err, model.ErrChannelNotFound) || errors.Is(err, model.ErrNetwork) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", model.ErrNetwork, err)
	}
	if playlistID == "" {
		return "", fmt.Errorf("%w: %s", model.ErrChannelNotFound, normalized)
	}
	return playlistID, nil
}
