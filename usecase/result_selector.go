package usecase

import "yt-latest/domain/model"

// SelectResult picks the final result: the match, else the fallback when allowed, else nothing.
func SelectResult(outcome ScanOutcome, useFallbackIfNoMatch bool) model.ScanResult {
	switch {
	case outcome.Match != nil:
		return model.ScanResult{Video: outcome.Match, Matched: true, Partial: outcome.Partial}
	case useFallbackIfNoMatch && outcome.Fallback != nil:
		return model.ScanResult{Video: outcome.Fallback, Matched: false, Partial: outcome.Partial}
	default:
		return model.ScanResult{Partial: outcome.Partial}
	}
}
