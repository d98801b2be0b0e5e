package http

import (
	"errors"
	"html"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"yt-latest/domain/dto"
	"yt-latest/domain/model"
	"yt-latest/infrastructure/logger"
	"yt-latest/interfaces/render"
	"yt-latest/usecase"
)

const (
	msgAPIKeyMissing = "API Key Missing."
	msgNetworkError  = "Network Error."
)

// ILatestVideoHandler defines the latest matching video endpoint
type ILatestVideoHandler interface {
	GetLatestVideo(ctx *gin.Context)
}

// LatestVideoHandler implements ILatestVideoHandler
type LatestVideoHandler struct {
	latestVideoUseCase usecase.ILatestVideoUseCase
	defaults           dto.LatestVideoDefaults
}

// payloadRenderer is what the endpoint needs from a render format
type payloadRenderer interface {
	usecase.Renderer
	ContentType() string
	RenderFixed(videoID string) (string, error)
}

// NewLatestVideoHandler creates the handler; a nil use case means no API key is configured
func NewLatestVideoHandler(latestVideoUseCase usecase.ILatestVideoUseCase, defaults dto.LatestVideoDefaults) ILatestVideoHandler {
	return &LatestVideoHandler{latestVideoUseCase: latestVideoUseCase, defaults: defaults}
}

// GetLatestVideo handles GET /api/youtube/latest-video
func (h *LatestVideoHandler) GetLatestVideo(ctx *gin.Context) {
	req := &dto.LatestVideoRequest{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		h.respondError(ctx, req, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}
	req.ApplyDefaults(h.defaults)
	if err := req.Validate(); err != nil {
		h.respondError(ctx, req, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	renderer := newRenderer(req)
	if req.VideoID != "" {
		payload, err := renderer.RenderFixed(req.VideoID)
		if err != nil {
			h.respondError(ctx, req, http.StatusInternalServerError, "Failed to render video", err)
			return
		}
		ctx.Data(http.StatusOK, renderer.ContentType(), []byte(payload))
		return
	}

	if h.latestVideoUseCase == nil {
		h.respondError(ctx, req, http.StatusServiceUnavailable, msgAPIKeyMissing, nil)
		return
	}

	pattern, err := ParseTitlePattern(req.Title)
	if err != nil {
		h.respondError(ctx, req, http.StatusBadRequest, "Invalid title pattern", err)
		return
	}
	scanReq, err := model.NewScanRequest(req.Handle, pattern, *req.MaxSearches, req.UseFallback(), time.Duration(*req.Cache)*time.Second)
	if err != nil {
		h.respondUseCaseError(ctx, req, err)
		return
	}

	payload, err := h.latestVideoUseCase.FindLatestMatchingVideoCached(ctx.Request.Context(), scanReq, renderer)
	if err != nil {
		h.respondUseCaseError(ctx, req, err)
		return
	}
	ctx.Data(http.StatusOK, renderer.ContentType(), []byte(payload))
}

func newRenderer(req *dto.LatestVideoRequest) payloadRenderer {
	opts := render.NewEmbedOptions(req.Autoplay, req.Mute)
	if req.Format == "json" {
		return render.NewJSONRenderer(opts, req.Title)
	}
	return render.NewIframeRenderer(opts, req.Title)
}

func (h *LatestVideoHandler) respondUseCaseError(ctx *gin.Context, req *dto.LatestVideoRequest, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidPattern):
		h.respondError(ctx, req, http.StatusBadRequest, "Invalid title pattern", err)
	case errors.Is(err, model.ErrChannelNotFound):
		h.respondError(ctx, req, http.StatusNotFound, "Channel Not Found: "+req.Handle, err)
	case errors.Is(err, model.ErrNetwork):
		h.respondError(ctx, req, http.StatusBadGateway, msgNetworkError, err)
	default:
		h.respondError(ctx, req, http.StatusInternalServerError, "Failed to find latest video", err)
	}
}

// respondError writes message as JSON for format=json and as escaped HTML text otherwise
func (h *LatestVideoHandler) respondError(ctx *gin.Context, req *dto.LatestVideoRequest, status int, message string, err error) {
	entry := logger.GetLogger().WithField("status", status).WithField("handle", req.Handle).WithField("title", req.Title)
	if err != nil {
		entry = entry.WithField("error", err)
	}
	if status >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Warn(message)
	}

	if req.Format == "json" {
		body := gin.H{"error": message}
		if err != nil {
			body["message"] = err.Error()
		}
		ctx.JSON(status, body)
		return
	}
	text := html.EscapeString(message)
	if status == http.StatusBadRequest && err != nil {
		text = "<strong>Error:</strong> " + text + ": " + html.EscapeString(err.Error())
	}
	ctx.Data(status, "text/html; charset=utf-8", []byte(text))
}
