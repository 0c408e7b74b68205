package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jacker_jobs_tracked_total",
			Help: "Total number of tracked jobs persisted, by analysis method",
		},
		[]string{"method"},
	)

	TierSkips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jacker_tier_skips_total",
			Help: "Number of times the AI tier was skipped, by reason",
		},
		[]string{"reason"},
	)

	PersistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jacker_persist_failures_total",
			Help: "Failed store writes, by attempt (primary or recovery)",
		},
		[]string{"attempt"},
	)

	ScrapeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jacker_scrape_duration_seconds",
			Help:    "Duration of remote scrape sessions in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"result"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jacker_extraction_duration_seconds",
			Help:    "Duration of AI extraction calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)
)

// Result labels shared by the duration histograms.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// ResultLabel maps an error to ResultSuccess or ResultError.
func ResultLabel(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
