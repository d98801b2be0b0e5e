package render

import (
	"encoding/json"
	"time"

	"yt-latest/domain/model"
)

// LatestVideoPayload is the body of the json format
type LatestVideoPayload struct {
	Found   bool          `json:"found"`
	Matched bool          `json:"matched"`
	Partial bool          `json:"partial,omitempty"`
	Pattern string        `json:"pattern,omitempty"`
	Message string        `json:"message,omitempty"`
	Video   *VideoPayload `json:"video,omitempty"`
}

type VideoPayload struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Position    int64      `json:"position"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	EmbedURL    string     `json:"embed_url"`
}

// JSONRenderer renders the lookup result as a JSON document
type JSONRenderer struct {
	Options  EmbedOptions
	RawTitle string
}

func NewJSONRenderer(opts EmbedOptions, rawTitle string) *JSONRenderer {
	return &JSONRenderer{Options: opts, RawTitle: rawTitle}
}

func (r *JSONRenderer) Name() string {
	qs, _ := r.Options.Encode()
	if qs == "" {
		return "json"
	}
	return "json?" + qs
}

func (r *JSONRenderer) ContentType() string {
	return "application/json; charset=utf-8"
}

func (r *JSONRenderer) Render(req model.ScanRequest, result model.ScanResult) (string, error) {
	payload := LatestVideoPayload{
		Found:   result.Found(),
		Matched: result.Matched,
		Partial: result.Partial,
	}
	if req.Pattern.Compiled() {
		payload.Pattern = req.Pattern.Text()
	}
	if !result.Found() {
		payload.Message = notFoundPrefix + r.RawTitle
		return marshal(payload)
	}
	video, err := r.video(result.Video)
	if err != nil {
		return "", err
	}
	payload.Video = video
	return marshal(payload)
}

// RenderFixed renders a preset video without any lookup
func (r *JSONRenderer) RenderFixed(videoID string) (string, error) {
	video, err := r.video(&model.VideoItem{ID: videoID, Title: fixedVideoTitle})
	if err != nil {
		return "", err
	}
	return marshal(LatestVideoPayload{Found: true, Video: video})
}

func (r *JSONRenderer) video(item *model.VideoItem) (*VideoPayload, error) {
	src, err := EmbedURL(item.ID, r.Options)
	if err != nil {
		return nil, err
	}
	v := &VideoPayload{ID: item.ID, Title: item.Title, Position: item.PositionHint, EmbedURL: src}
	if !item.PublishedAt.IsZero() {
		published := item.PublishedAt
		v.PublishedAt = &published
	}
	return v, nil
}

func marshal(payload LatestVideoPayload) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
