package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"yt-latest/domain/dto"
	"yt-latest/domain/model"
	"yt-latest/domain/repository"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const defaultRequestTimeout = 10 * time.Second

// Client represents a read-only YouTube Data API client authenticated with an API key
type Client struct {
	service *youtube.Service
	timeout time.Duration
}

// Config represents YouTube API configuration
type Config struct {
	APIKey         string        `json:"api_key"`
	RequestTimeout time.Duration `json:"request_timeout"`
	// Endpoint and HTTPClient override the transport, mainly for tests.
	// With HTTPClient set the API key is not attached to requests.
	Endpoint   string       `json:"endpoint,omitempty"`
	HTTPClient *http.Client `json:"-"`
}

// NewYouTubeClient creates a new YouTube API client
func NewYouTubeClient(ctx context.Context, config *Config) (repository.IYouTube, error) {
	if config == nil {
		return nil, errors.New("youtube config is required")
	}
	var opts []option.ClientOption
	switch {
	case config.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(config.HTTPClient))
	case config.APIKey != "":
		opts = append(opts, option.WithAPIKey(config.APIKey))
	default:
		return nil, errors.New("youtube API key is required")
	}
	if config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(config.Endpoint))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{service: service, timeout: timeout}, nil
}

// ResolveUploadsPlaylist looks up the uploads playlist of a channel by handle (one channels.list call)
func (c *Client) ResolveUploadsPlaylist(ctx context.Context, handle string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := c.service.Channels.List([]string{"contentDetails"}).
		ForHandle(handle).
		Context(callCtx).
		Do()
	if err != nil {
		return "", fmt.Errorf("%w: failed to resolve channel %q: %w", model.ErrNetwork, handle, err)
	}

	if len(response.Items) == 0 {
		return "", fmt.Errorf("%w: %s", model.ErrChannelNotFound, handle)
	}

	channel := response.Items[0]
	if channel.ContentDetails == nil || channel.ContentDetails.RelatedPlaylists == nil ||
		channel.ContentDetails.RelatedPlaylists.Uploads == "" {
		return "", fmt.Errorf("%w: channel %q response has no uploads playlist", model.ErrNetwork, handle)
	}
	return channel.ContentDetails.RelatedPlaylists.Uploads, nil
}

// ListPlaylistPage retrieves one page of playlist items (one playlistItems.list call)
func (c *Client) ListPlaylistPage(ctx context.Context, req *dto.PlaylistPageRequest) (*dto.PlaylistPage, error) {
	if req == nil || req.PlaylistID == "" {
		return nil, errors.New("playlist ID is required")
	}
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	call := c.service.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(req.PlaylistID)
	if req.PageSize > 0 {
		call = call.MaxResults(req.PageSize)
	}
	if req.PageToken != "" {
		call = call.PageToken(req.PageToken)
	}

	response, err := call.Context(callCtx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list playlist %s: %w", model.ErrNetwork, req.PlaylistID, err)
	}

	items := make([]model.VideoItem, 0, len(response.Items))
	for _, item := range response.Items {
		if video, ok := convertToVideoItem(item); ok {
			items = append(items, video)
		}
	}

	return &dto.PlaylistPage{
		Items:         items,
		NextPageToken: response.NextPageToken,
		RawCount:      len(response.Items),
	}, nil
}

// convertToVideoItem converts a playlist item to our model, skipping entries without a video id
func convertToVideoItem(item *youtube.PlaylistItem) (model.VideoItem, bool) {
	if item == nil || item.Snippet == nil || item.Snippet.ResourceId == nil || item.Snippet.ResourceId.VideoId == "" {
		return model.VideoItem{}, false
	}
	publishedAt, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
	return model.VideoItem{
		ID:           item.Snippet.ResourceId.VideoId,
		Title:        item.Snippet.Title,
		PositionHint: item.Snippet.Position,
		PublishedAt:  publishedAt,
	}, true
}
