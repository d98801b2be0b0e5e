package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yt-latest/domain/dto"
	"yt-latest/domain/model"
	httpHandler "yt-latest/interfaces/http"
	"yt-latest/usecase"
)

type MockLatestVideoUseCase struct {
	mock.Mock
}

func (m *MockLatestVideoUseCase) FindLatestMatchingVideo(ctx context.Context, req model.ScanRequest) (model.ScanResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.ScanResult), args.Error(1)
}

func (m *MockLatestVideoUseCase) FindLatestMatchingVideoCached(ctx context.Context, req model.ScanRequest, renderer usecase.Renderer) (string, error) {
	args := m.Called(ctx, req, renderer)
	return args.String(0), args.Error(1)
}

var defaults = dto.LatestVideoDefaults{CacheSeconds: 900, MaxSearches: 500, ShowLastIfNone: true}

func newRouter(uc usecase.ILatestVideoUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := httpHandler.NewLatestVideoHandler(uc, defaults)
	router.GET("/api/youtube/latest-video", handler.GetLatestVideo)
	return router
}

func get(router *gin.Engine, query string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/youtube/latest-video?"+query, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetLatestVideo_AppliesDefaults(t *testing.T) {
	uc := new(MockLatestVideoUseCase)
	uc.On("FindLatestMatchingVideoCached", mock.Anything, mock.MatchedBy(func(req model.ScanRequest) bool {
		return req.ChannelHandle == "@examplechannel" &&
			req.Pattern.Text() == "/개장전/i" &&
			req.MaxItemsToScan == 500 &&
			req.UseFallbackIfNoMatch &&
			req.CacheTTL == 900*time.Second
	}), mock.MatchedBy(func(r usecase.Renderer) bool { return r.Name() == "iframe" })).
		Return("<iframe>", nil).Once()

	w := get(newRouter(uc), "handle=%40examplechannel&title=%2F%EA%B0%9C%EC%9E%A5%EC%A0%84%2Fi")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<iframe>", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	uc.AssertExpectations(t)
}

func TestGetLatestVideo_ExplicitParameters(t *testing.T) {
	uc := new(MockLatestVideoUseCase)
	uc.On("FindLatestMatchingVideoCached", mock.Anything, mock.MatchedBy(func(req model.ScanRequest) bool {
		return req.MaxItemsToScan == 120 && !req.UseFallbackIfNoMatch && req.CacheTTL == 0 &&
			req.Pattern.Text() == `/LIVE/i`
	}), mock.MatchedBy(func(r usecase.Renderer) bool { return r.Name() == "json?autoplay=1&mute=1" })).
		Return(`{"found":false}`, nil).Once()

	w := get(newRouter(uc), "handle=examplechannel&title=LIVE&cache=0&max_searches=120&show_last_if_none=0&format=json&autoplay=1&mute=true")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	uc.AssertExpectations(t)
}

func TestGetLatestVideo_FixedVideoSkipsLookup(t *testing.T) {
	uc := new(MockLatestVideoUseCase)

	w := get(newRouter(uc), "video_id=NJUjU9ALj4A")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `src="https://www.youtube.com/embed/NJUjU9ALj4A"`)
	assert.Contains(t, w.Body.String(), `title="Fixed Video"`)
	uc.AssertNotCalled(t, "FindLatestMatchingVideoCached", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetLatestVideo_FixedVideoWithoutAPIKey(t *testing.T) {
	w := get(newRouter(nil), "video_id=NJUjU9ALj4A")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetLatestVideo_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "video_id with title", query: "video_id=abc&title=LIVE"},
		{name: "missing title", query: "handle=examplechannel"},
		{name: "missing handle", query: "title=LIVE"},
		{name: "negative cache", query: "handle=examplechannel&title=LIVE&cache=-1"},
		{name: "negative max", query: "handle=examplechannel&title=LIVE&max_searches=-5"},
		{name: "bad fallback flag", query: "handle=examplechannel&title=LIVE&show_last_if_none=yes"},
		{name: "bad format", query: "handle=examplechannel&title=LIVE&format=xml"},
		{name: "non numeric cache", query: "handle=examplechannel&title=LIVE&cache=soon"},
		{name: "invalid regex", query: "handle=examplechannel&title=%2F(%2F"},
		{name: "unsupported flag", query: "handle=examplechannel&title=%2FLIVE%2Fx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockLatestVideoUseCase)
			w := get(newRouter(uc), tt.query)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			uc.AssertNotCalled(t, "FindLatestMatchingVideoCached", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGetLatestVideo_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "channel not found", err: fmt.Errorf("%w: examplechannel", model.ErrChannelNotFound), wantStatus: http.StatusNotFound, wantBody: "Channel Not Found: @examplechannel"},
		{name: "network", err: fmt.Errorf("%w: timeout", model.ErrNetwork), wantStatus: http.StatusBadGateway, wantBody: "Network Error."},
		{name: "invalid pattern", err: model.ErrInvalidPattern, wantStatus: http.StatusBadRequest, wantBody: "Invalid title pattern"},
		{name: "unexpected", err: fmt.Errorf("render failed"), wantStatus: http.StatusInternalServerError, wantBody: "Failed to find latest video"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockLatestVideoUseCase)
			uc.On("FindLatestMatchingVideoCached", mock.Anything, mock.Anything, mock.Anything).Return("", tt.err).Once()

			w := get(newRouter(uc), "handle=%40examplechannel&title=LIVE")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			uc.AssertExpectations(t)
		})
	}
}

func TestGetLatestVideo_JSONErrorBody(t *testing.T) {
	uc := new(MockLatestVideoUseCase)
	uc.On("FindLatestMatchingVideoCached", mock.Anything, mock.Anything, mock.Anything).Return("", model.ErrNetwork).Once()

	w := get(newRouter(uc), "handle=examplechannel&title=LIVE&format=json")

	require.Equal(t, http.StatusBadGateway, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Network Error.", body["error"])
}

func TestGetLatestVideo_APIKeyMissing(t *testing.T) {
	w := get(newRouter(nil), "handle=examplechannel&title=LIVE")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "API Key Missing.", w.Body.String())
}

func TestGetLatestVideo_EscapesHandleInHTMLError(t *testing.T) {
	uc := new(MockLatestVideoUseCase)
	uc.On("FindLatestMatchingVideoCached", mock.Anything, mock.Anything, mock.Anything).Return("", model.ErrChannelNotFound).Once()

	w := get(newRouter(uc), "handle=%3Cb%3E&title=LIVE")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Channel Not Found: &lt;b&gt;", w.Body.String())
}
