package dto

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// LatestVideoRequest represents the query parameters of GET /api/youtube/latest-video
type LatestVideoRequest struct {
	VideoID        string `form:"video_id"`
	Title          string `form:"title"`
	Handle         string `form:"handle"`
	Cache          *int   `form:"cache"`        // seconds, 0 disables caching
	MaxSearches    *int   `form:"max_searches"` // scan budget
	ShowLastIfNone string `form:"show_last_if_none"`
	Format         string `form:"format"` // html, json
	Autoplay       bool   `form:"autoplay"`
	Mute           bool   `form:"mute"`
}

// LatestVideoDefaults holds the values used for omitted parameters
type LatestVideoDefaults struct {
	CacheSeconds   int
	MaxSearches    int
	ShowLastIfNone bool
}

// ApplyDefaults fills omitted parameters
func (r *LatestVideoRequest) ApplyDefaults(d LatestVideoDefaults) {
	if r.Cache == nil {
		v := d.CacheSeconds
		r.Cache = &v
	}
	if r.MaxSearches == nil {
		v := d.MaxSearches
		r.MaxSearches = &v
	}
	if r.ShowLastIfNone == "" {
		r.ShowLastIfNone = "0"
		if d.ShowLastIfNone {
			r.ShowLastIfNone = "1"
		}
	}
	if r.Format == "" {
		r.Format = "html"
	}
}

// Validate checks parameter combinations. A fixed video_id excludes title;
// otherwise title and handle are both required.
func (r LatestVideoRequest) Validate() error {
	fixed := r.VideoID != ""
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.When(fixed, validation.Empty.Error("cannot be used together with video_id")).
				Else(validation.Required.Error("is required when video_id is not set"))),
		validation.Field(&r.Handle,
			validation.When(!fixed, validation.Required.Error("is required when video_id is not set"))),
		validation.Field(&r.Cache, validation.Min(0)),
		validation.Field(&r.MaxSearches, validation.Min(0)),
		validation.Field(&r.ShowLastIfNone, validation.In("0", "1")),
		validation.Field(&r.Format, validation.In("html", "json")),
	)
}

// UseFallback reports whether the most recent upload should be returned when nothing matches
func (r LatestVideoRequest) UseFallback() bool {
	return r.ShowLastIfNone == "1"
}
