package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"yt-latest/domain/dto"
	"yt-latest/domain/model"
	"yt-latest/domain/repository"
	"yt-latest/infrastructure/logger"
	"yt-latest/infrastructure/metrics"
)

// MaxPageSize is the upstream page-size ceiling of playlistItems.list
const MaxPageSize = 50

// TitleMatcher evaluates a title; an error counts as "no match" for that item
type TitleMatcher interface {
	MatchTitle(title string) (bool, error)
}

// ScanOutcome is what the scanner accumulated before it stopped
type ScanOutcome struct {
	Match    *model.VideoItem
	Fallback *model.VideoItem // first item of the first page
	Scanned  int
	Pages    int
	Partial  bool // a page request failed after at least one page was scanned
}

// UploadsScanner walks an uploads playlist page by page
type UploadsScanner struct {
	youtubeRepo repository.IYouTube
}

// NewUploadsScanner creates a new uploads scanner
func NewUploadsScanner(youtubeRepo repository.IYouTube) *UploadsScanner {
	return &UploadsScanner{youtubeRepo: youtubeRepo}
}

// Pages returns a lazy sequence of page batches. Each batch holds at most
// min(MaxPageSize, remaining budget) items. The sequence ends when the budget is
// spent, the upstream reports no continuation token, a page comes back with no
// entries at all, or a request fails (the error is yielded once, last). A consumer that stops
// ranging prevents any further request.
func (s *UploadsScanner) Pages(ctx context.Context, playlistID string, budget int) iter.Seq2[[]model.VideoItem, error] {
	return func(yield func([]model.VideoItem, error) bool) {
		scanned := 0
		pageToken := ""
		for scanned < budget {
			pageSize := min(MaxPageSize, budget-scanned)
			page, err := s.youtubeRepo.ListPlaylistPage(ctx, &dto.PlaylistPageRequest{
				PlaylistID: playlistID,
				PageSize:   int64(pageSize),
				PageToken:  pageToken,
			})
			if err != nil {
				metrics.PageFetches.WithLabelValues("error").Inc()
				if !errors.Is(err, model.ErrNetwork) {
					err = fmt.Errorf("%w: %w", model.ErrNetwork, err)
				}
				yield(nil, err)
				return
			}
			metrics.PageFetches.WithLabelValues("ok").Inc()
			if page == nil || page.Examined() == 0 {
				return
			}

			// unavailable entries are charged to the budget but never yielded
			items := page.Items
			if len(items) > pageSize {
				items = items[:pageSize]
			}
			if len(items) > 0 && !yield(items, nil) {
				return
			}

			scanned += min(page.Examined(), pageSize)
			// a repeated token would loop forever
			if page.NextPageToken == "" || page.NextPageToken == pageToken {
				return
			}
			pageToken = page.NextPageToken
		}
	}
}

// Scan applies matcher to every item in API order and returns at the first match.
// A request failure before any item was seen is returned as an error; a later
// failure ends the scan with the accumulated state and Partial set.
func (s *UploadsScanner) Scan(ctx context.Context, playlistID string, matcher TitleMatcher, budget int) (ScanOutcome, error) {
	var outcome ScanOutcome
	defer func() { metrics.ItemsScanned.Observe(float64(outcome.Scanned)) }()

	for items, err := range s.Pages(ctx, playlistID, budget) {
		if err != nil {
			if outcome.Fallback == nil {
				return outcome, err
			}
			logger.GetLogger().WithFields(map[string]interface{}{
				"playlistId": playlistID,
				"scanned":    outcome.Scanned,
				"pages":      outcome.Pages,
				"error":      err,
			}).Warn("Uploads scan stopped early, keeping partial result")
			outcome.Partial = true
			break
		}

		outcome.Pages++
		if outcome.Fallback == nil {
			first := items[0]
			outcome.Fallback = &first
		}

		for i := range items {
			outcome.Scanned++
			ok, matchErr := matcher.MatchTitle(items[i].Title)
			if matchErr != nil {
				logger.GetLogger().WithFields(map[string]interface{}{
					"videoId": items[i].ID,
					"error":   matchErr,
				}).Debug("Title match failed, treating as no match")
				continue
			}
			if ok {
				match := items[i]
				outcome.Match = &match
				return outcome, nil
			}
		}
	}
	return outcome, nil
}
