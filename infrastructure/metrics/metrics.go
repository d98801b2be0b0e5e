package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors are usable before Register is called; registration only exposes them.
var (
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytlatest_cache_lookups_total",
			Help: "Latest-video cache lookups, by result (hit, miss, bypass).",
		},
		[]string{"result"},
	)

	PageFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytlatest_playlist_page_fetches_total",
			Help: "Uploads playlist page requests, by status (ok, error).",
		},
		[]string{"status"},
	)

	ScanOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytlatest_scan_outcomes_total",
			Help: "Completed scans, by outcome (matched, fallback, empty).",
		},
		[]string{"outcome"},
	)

	ItemsScanned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ytlatest_items_scanned",
			Help:    "Number of playlist items examined per scan.",
			Buckets: []float64{1, 10, 50, 100, 200, 500, 1000},
		},
	)
)

var registerOnce sync.Once

// Register adds all collectors to reg. Safe to call more than once.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(CacheLookups, PageFetches, ScanOutcomes, ItemsScanned)
	})
}
