package render

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"

	"github.com/google/go-querystring/query"

	"yt-latest/domain/model"
)

const (
	embedBaseURL    = "https://www.youtube.com/embed/"
	fixedVideoTitle = "Fixed Video"
	notFoundPrefix  = "No Matching Video Found for: "
)

var iframeTemplate = template.Must(template.New("iframe").Parse(
	`<div class="yt-video-container" style="position:relative; padding-bottom:56.25%; height:0; overflow:hidden; max-width:100%;">` +
		`<iframe style="position:absolute; top:0; left:0; width:100%; height:100%; border:0;" ` +
		`src="{{.Src}}" title="{{.Title}}" ` +
		`allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture" ` +
		`allowfullscreen></iframe></div>`))

// EmbedOptions are player parameters appended to the embed URL
type EmbedOptions struct {
	Autoplay int `url:"autoplay,omitempty"`
	Mute     int `url:"mute,omitempty"`
	Start    int `url:"start,omitempty"`
}

// NewEmbedOptions maps the boolean request flags to player parameters
func NewEmbedOptions(autoplay, mute bool) EmbedOptions {
	var o EmbedOptions
	if autoplay {
		o.Autoplay = 1
	}
	if mute {
		o.Mute = 1
	}
	return o
}

// Encode returns the query string, empty when no option is set
func (o EmbedOptions) Encode() (string, error) {
	v, err := query.Values(o)
	if err != nil {
		return "", err
	}
	return v.Encode(), nil
}

// EmbedURL builds the player URL for videoID
func EmbedURL(videoID string, opts EmbedOptions) (string, error) {
	qs, err := opts.Encode()
	if err != nil {
		return "", fmt.Errorf("encode embed options: %w", err)
	}
	u := embedBaseURL + url.PathEscape(videoID)
	if qs != "" {
		u += "?" + qs
	}
	return u, nil
}

// IframeRenderer renders the responsive 16:9 embed container
type IframeRenderer struct {
	Options EmbedOptions
	// RawTitle is the caller's title parameter, echoed in the not-found message.
	RawTitle string
}

func NewIframeRenderer(opts EmbedOptions, rawTitle string) *IframeRenderer {
	return &IframeRenderer{Options: opts, RawTitle: rawTitle}
}

// Name includes the player options so differently configured embeds never share a cache entry
func (r *IframeRenderer) Name() string {
	qs, _ := r.Options.Encode()
	if qs == "" {
		return "iframe"
	}
	return "iframe?" + qs
}

func (r *IframeRenderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *IframeRenderer) Render(_ model.ScanRequest, result model.ScanResult) (string, error) {
	if !result.Found() {
		return notFoundPrefix + template.HTMLEscapeString(r.RawTitle), nil
	}
	return r.embed(result.Video.ID, result.Video.Title)
}

// RenderFixed renders a preset video without any lookup
func (r *IframeRenderer) RenderFixed(videoID string) (string, error) {
	return r.embed(videoID, fixedVideoTitle)
}

func (r *IframeRenderer) embed(videoID, title string) (string, error) {
	src, err := EmbedURL(videoID, r.Options)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := iframeTemplate.Execute(&buf, struct{ Src, Title string }{src, title}); err != nil {
		return "", fmt.Errorf("render iframe: %w", err)
	}
	return buf.String(), nil
}
