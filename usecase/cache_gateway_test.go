package usecase_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt-latest/domain/model"
	"yt-latest/usecase"
)

// countingFinder returns a scripted sequence of results, repeating the last one
type countingFinder struct {
	calls   atomic.Int32
	mu      sync.Mutex
	results []model.ScanResult
	errs    []error
}

func (f *countingFinder) FindLatestMatchingVideo(_ context.Context, _ model.ScanRequest) (model.ScanResult, error) {
	n := int(f.calls.Add(1)) - 1
	f.mu.Lock()
	defer f.mu.Unlock()
	var err error
	if len(f.errs) > 0 {
		err = f.errs[min(n, len(f.errs)-1)]
	}
	if err != nil {
		return model.ScanResult{}, err
	}
	return f.results[min(n, len(f.results)-1)], nil
}

func matched(id string) model.ScanResult {
	return model.ScanResult{Video: &model.VideoItem{ID: id, Title: "Market LIVE Update"}, Matched: true}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCacheGateway_HitSkipsPipeline(t *testing.T) {
	finder := &countingFinder{results: []model.ScanResult{matched("a"), matched("b")}}
	store := newMapStore()
	gw := usecase.NewCacheGateway(finder, store)
	req := scanRequest(t, "LIVE", 500, true, time.Minute)

	first, err := gw.Fetch(context.Background(), req, stubRenderer{})
	require.NoError(t, err)
	second, err := gw.Fetch(context.Background(), req, stubRenderer{})
	require.NoError(t, err)

	assert.Equal(t, "a|true", first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), finder.calls.Load())
	assert.Equal(t, 1, store.len())
}

func TestCacheGateway_ExpiryRecomputes(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	finder := &countingFinder{results: []model.ScanResult{matched("a"), matched("b")}}
	gw := usecase.NewCacheGateway(finder, newMapStore()).WithClock(clock.Now)
	req := scanRequest(t, "LIVE", 500, true, 15*time.Minute)

	payload, err := gw.Fetch(context.Background(), req, stubRenderer{})
	require.NoError(t, err)
	assert.Equal(t, "a|true", payload)

	clock.Advance(15*time.Minute - time.Second)
	payload, err = gw.Fetch(context.Background(), req, stubRenderer{})
	require.NoError(t, err)
	assert.Equal(t, "a|true", payload)
	assert.Equal(t, int32(1), finder.calls.Load())

	clock.Advance(time.Second)
	payload, err = gw.Fetch(context.Background(), req, stubRenderer{})
	require.NoError(t, err)
	assert.Equal(t, "b|true", payload)
	assert.Equal(t, int32(2), finder.calls.Load())
}

func TestCacheGateway_ZeroTTLBypassesStore(t *testing.T) {
	finder := &countingFinder{results: []model.ScanResult{matched("a")}}
	store := newMapStore()
	gw := usecase.NewCacheGateway(finder, store)
	req := scanRequest(t, "LIVE", 500, true, 0)

	for i := 0; i < 3; i++ {
		_, err := gw.Fetch(context.Background(), req, stubRenderer{})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), finder.calls.Load())
	assert.Zero(t, store.sets)
}

func TestCacheGateway_NilStoreBypasses(t *testing.T) {
	finder := &countingFinder{results: []model.ScanResult{matched("a")}}
	gw := usecase.NewCacheGateway(finder, nil)
	req := scanRequest(t, "LIVE", 500, true, time.Minute)

	_, err := gw.Fetch(context.Background(), req, stubRenderer{})
	require.NoError(t, err)
	_, err = gw.Fetch(context.Background(), req, stubRenderer{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), finder.calls.Load())
}

func TestCacheGateway_DoesNotCacheFailures(t *testing.T) {
	finder := &countingFinder{
		results: []model.ScanResult{matched("a")},
		errs:    []error{model.ErrNetwork, nil},
	}
	store := newMapStore()
	gw := usecase.NewCacheGateway(finder, store)
	req := scanRequest(t, "LIVE", 500, true, time.Minute)

	_, err := gw.Fetch(context.Background(), req, stubRenderer{})
	assert.ErrorIs(t, err, model.ErrNetwork)
	assert.Zero(t, store.len())

	payload, err := gw.Fetch(context.Background(), req, stubRenderer{})
	require.NoError(t, err)
	assert.Equal(t, "a|true", payload)
	assert.Equal(t, int32(2), finder.calls.Load())
}

func TestCacheGateway_DoesNotCacheNotFoundOrPartial(t *testing.T) {
	tests := []struct {
		name   string
		result model.ScanResult
		want   string
	}{
		{name: "not found", result: model.ScanResult{}, want: "none"},
		{name: "partial", result: model.ScanResult{Video: &model.VideoItem{ID: "f"}, Partial: true}, want: "f|false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &countingFinder{results: []model.ScanResult{tt.result}}
			store := newMapStore()
			gw := usecase.NewCacheGateway(finder, store)
			req := scanRequest(t, "LIVE", 500, true, time.Minute)

			payload, err := gw.Fetch(context.Background(), req, stubRenderer{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, payload)
			_, err = gw.Fetch(context.Background(), req, stubRenderer{})
			require.NoError(t, err)

			assert.Zero(t, store.len())
			assert.Equal(t, int32(2), finder.calls.Load())
		})
	}
}

func TestCacheGateway_RenderErrorIsNotCached(t *testing.T) {
	finder := &countingFinder{results: []model.ScanResult{matched("a")}}
	store := newMapStore()
	gw := usecase.NewCacheGateway(finder, store)
	req := scanRequest(t, "LIVE", 500, true, time.Minute)

	_, err := gw.Fetch(context.Background(), req, stubRenderer{err: errBoom})
	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, store.len())
}

func TestCacheGateway_StoreErrorsDegrade(t *testing.T) {
	t.Run("read error is a miss", func(t *testing.T) {
		finder := &countingFinder{results: []model.ScanResult{matched("a")}}
		store := newMapStore()
		store.getErr = errBoom
		gw := usecase.NewCacheGateway(finder, store)

		payload, err := gw.Fetch(context.Background(), scanRequest(t, "LIVE", 500, true, time.Minute), stubRenderer{})
		require.NoError(t, err)
		assert.Equal(t, "a|true", payload)
		assert.Equal(t, int32(1), finder.calls.Load())
	})

	t.Run("write error still returns payload", func(t *testing.T) {
		finder := &countingFinder{results: []model.ScanResult{matched("a")}}
		store := newMapStore()
		store.setErr = errBoom
		gw := usecase.NewCacheGateway(finder, store)

		payload, err := gw.Fetch(context.Background(), scanRequest(t, "LIVE", 500, true, time.Minute), stubRenderer{})
		require.NoError(t, err)
		assert.Equal(t, "a|true", payload)
		assert.Equal(t, 1, store.sets)
	})
}

// gatedFinder blocks every run until release is closed or its context ends
type gatedFinder struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	result  model.ScanResult
}

func newGatedFinder(result model.ScanResult) *gatedFinder {
	return &gatedFinder{started: make(chan struct{}, 16), release: make(chan struct{}), result: result}
}

func (f *gatedFinder) FindLatestMatchingVideo(ctx context.Context, _ model.ScanRequest) (model.ScanResult, error) {
	f.calls.Add(1)
	f.started <- struct{}{}
	select {
	case <-f.release:
		return f.result, nil
	case <-ctx.Done():
		return model.ScanResult{}, ctx.Err()
	}
}

// waitForLookups blocks until n cache reads happened, then gives the callers time to join the in-flight run
func waitForLookups(t *testing.T, store *mapStore, n int32) {
	t.Helper()
	require.Eventually(t, func() bool { return store.gets.Load() >= n }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
}

func TestCacheGateway_ConcurrentMissesShareOneRun(t *testing.T) {
	finder := newGatedFinder(matched("a"))
	store := newMapStore()
	gw := usecase.NewCacheGateway(finder, store)
	req := scanRequest(t, "LIVE", 500, true, time.Minute)

	const workers = 8
	payloads := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := gw.Fetch(context.Background(), req, stubRenderer{})
			assert.NoError(t, err)
			payloads[i] = p
		}(i)
	}
	<-finder.started
	waitForLookups(t, store, workers)
	close(finder.release)
	wg.Wait()

	for _, p := range payloads {
		assert.Equal(t, "a|true", p)
	}
	assert.Equal(t, int32(1), finder.calls.Load())
	assert.Equal(t, 1, store.len())
}

func TestCacheGateway_CancelledCallerDoesNotFailOthers(t *testing.T) {
	finder := newGatedFinder(matched("a"))
	store := newMapStore()
	gw := usecase.NewCacheGateway(finder, store)
	req := scanRequest(t, "LIVE", 500, true, time.Minute)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := gw.Fetch(ctxA, req, stubRenderer{})
		errA <- err
	}()
	<-finder.started

	type outcome struct {
		payload string
		err     error
	}
	resB := make(chan outcome, 1)
	go func() {
		p, err := gw.Fetch(context.Background(), req, stubRenderer{})
		resB <- outcome{p, err}
	}()
	waitForLookups(t, store, 2)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(finder.release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "a|true", b.payload)
	assert.Equal(t, int32(1), finder.calls.Load())
	assert.Equal(t, 1, store.len(), "the run finishes and is cached after its first caller left")
}

func TestCacheGateway_NotFoundEchoesEachCallersTitle(t *testing.T) {
	finder := newGatedFinder(model.ScanResult{})
	store := newMapStore()
	gw := usecase.NewCacheGateway(finder, store)
	req := scanRequest(t, "LIVE", 500, true, time.Minute)

	first := make(chan string, 1)
	go func() {
		p, err := gw.Fetch(context.Background(), req, stubRenderer{raw: "LIVE"})
		assert.NoError(t, err)
		first <- p
	}()
	<-finder.started

	second := make(chan string, 1)
	go func() {
		p, err := gw.Fetch(context.Background(), req, stubRenderer{raw: "/LIVE/"})
		assert.NoError(t, err)
		second <- p
	}()
	waitForLookups(t, store, 2)
	close(finder.release)

	assert.Equal(t, "none:LIVE", <-first)
	assert.Equal(t, "none:/LIVE/", <-second)
	assert.Equal(t, int32(1), finder.calls.Load())
	assert.Zero(t, store.len())
}

func TestCacheKey(t *testing.T) {
	base := scanRequest(t, "LIVE", 500, true, time.Minute)
	key := usecase.CacheKey(base, "iframe")

	assert.Regexp(t, `^yt_latest_[0-9a-f]{64}$`, key)
	assert.Equal(t, key, usecase.CacheKey(base, "iframe"))

	sameChannel := base
	sameChannel.ChannelHandle = "ExampleChannel"
	assert.Equal(t, key, usecase.CacheKey(sameChannel, "iframe"), "handle is case-insensitive and ignores @")

	otherTTL := base
	otherTTL.CacheTTL = time.Hour
	assert.Equal(t, key, usecase.CacheKey(otherTTL, "iframe"), "ttl is not part of the key")

	variants := map[string]model.ScanRequest{}
	v := base
	v.ChannelHandle = "otherchannel"
	variants["handle"] = v
	v = base
	v.Pattern = model.MustCompileMatchPattern("LIVE", "i")
	variants["flags"] = v
	v = base
	v.Pattern = model.MustCompileMatchPattern("Live", "")
	variants["pattern"] = v
	v = base
	v.MaxItemsToScan = 100
	variants["max"] = v
	v = base
	v.UseFallbackIfNoMatch = false
	variants["fallback"] = v

	for name, req := range variants {
		assert.NotEqual(t, key, usecase.CacheKey(req, "iframe"), name)
	}
	assert.NotEqual(t, key, usecase.CacheKey(base, "json"))
}
