// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DirectoryFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_directory_fetches_total",
			Help: "Total number of directory, catalog and position fetches by outcome",
		},
		[]string{"source", "status"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_cache_lookups_total",
			Help: "Total number of reference data cache lookups",
		},
		[]string{"cache", "result"},
	)

	StaleCityResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "points_stale_city_responses_total",
			Help: "City list responses discarded because the state selection changed",
		},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_submissions_total",
			Help: "Total number of submit attempts by outcome",
		},
		[]string{"status"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "points_submission_duration_seconds",
			Help: "Duration of creation requests in seconds",
		},
		[]string{"status"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "points_sessions_active",
			Help: "Number of open creation sessions",
		},
	)
)
