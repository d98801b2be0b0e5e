package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"

	"yt-latest/domain/dto"
	"yt-latest/domain/model"
)

// MockYouTube is a testify mock of repository.IYouTube
type MockYouTube struct {
	mock.Mock
}

func (m *MockYouTube) ResolveUploadsPlaylist(ctx context.Context, handle string) (string, error) {
	args := m.Called(ctx, handle)
	return args.String(0), args.Error(1)
}

func (m *MockYouTube) ListPlaylistPage(ctx context.Context, req *dto.PlaylistPageRequest) (*dto.PlaylistPage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PlaylistPage), args.Error(1)
}

// fakeYouTube serves pages in request order and records every request
type fakeYouTube struct {
	mu           sync.Mutex
	playlistID   string
	resolveErr   error
	pages        []dto.PlaylistPage
	failAt       int // request index that fails with a network error, -1 for none
	resolveCalls []string
	requests     []dto.PlaylistPageRequest
}

func newFakeYouTube(pages ...dto.PlaylistPage) *fakeYouTube {
	return &fakeYouTube{playlistID: "UU_example", pages: pages, failAt: -1}
}

func (f *fakeYouTube) ResolveUploadsPlaylist(_ context.Context, handle string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolveCalls = append(f.resolveCalls, handle)
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.playlistID, nil
}

func (f *fakeYouTube) ListPlaylistPage(_ context.Context, req *dto.PlaylistPageRequest) (*dto.PlaylistPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, *req)
	idx := len(f.requests) - 1
	if idx == f.failAt {
		return nil, fmt.Errorf("%w: connection reset", model.ErrNetwork)
	}
	if idx >= len(f.pages) {
		return &dto.PlaylistPage{}, nil
	}
	page := f.pages[idx]
	if n := int(req.PageSize); n < len(page.Items) {
		page.Items = page.Items[:n]
	}
	return &page, nil
}

func (f *fakeYouTube) pageSizes() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	sizes := make([]int64, 0, len(f.requests))
	for _, r := range f.requests {
		sizes = append(sizes, r.PageSize)
	}
	return sizes
}

func (f *fakeYouTube) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// makeItems builds n uploads starting at playlist position start
func makeItems(start, n int) []model.VideoItem {
	items := make([]model.VideoItem, n)
	for i := range items {
		pos := start + i
		items[i] = model.VideoItem{
			ID:           fmt.Sprintf("vid%03d", pos),
			Title:        fmt.Sprintf("Daily briefing #%d", pos),
			PositionHint: int64(pos),
		}
	}
	return items
}

func page(items []model.VideoItem, next string) dto.PlaylistPage {
	return dto.PlaylistPage{Items: items, NextPageToken: next}
}

// mapStore is an in-memory repository.ILatestVideoCache
type mapStore struct {
	mu      sync.Mutex
	entries map[string]model.CacheEntry
	sets    int
	gets    atomic.Int32
	getErr  error
	setErr  error
}

func newMapStore() *mapStore {
	return &mapStore{entries: map[string]model.CacheEntry{}}
}

func (s *mapStore) Get(_ context.Context, key string) (*model.CacheEntry, error) {
	s.gets.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (s *mapStore) Set(_ context.Context, entry *model.CacheEntry, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[entry.Key] = *entry
	return nil
}

func (s *mapStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// stubRenderer renders "<id>|<matched>", or "none" followed by the caller's raw title
type stubRenderer struct {
	name string
	raw  string
	err  error
}

func (r stubRenderer) Name() string {
	if r.name == "" {
		return "stub"
	}
	return r.name
}

func (r stubRenderer) Render(_ model.ScanRequest, result model.ScanResult) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if !result.Found() {
		if r.raw != "" {
			return "none:" + r.raw, nil
		}
		return "none", nil
	}
	return fmt.Sprintf("%s|%t", result.Video.ID, result.Matched), nil
}

var errBoom = errors.New("boom")
