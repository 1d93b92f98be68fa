package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RankingOutcomes counts ranking runs by how they ended:
	// "oracle", "unconfigured" or "failed".
	RankingOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grantmatch_ranking_outcomes_total",
			Help: "Total number of ranking runs by outcome",
		},
		[]string{"outcome"},
	)

	OracleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grantmatch_oracle_duration_seconds",
			Help:    "Duration of ranking oracle calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		},
		[]string{"provider"},
	)

	SyncFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grantmatch_sync_failures_total",
			Help: "Total number of tier synchronization failures",
		},
		[]string{"direction"},
	)

	SyncMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grantmatch_sync_misses_total",
			Help: "Tier synchronizations that found no row to update",
		},
		[]string{"direction"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grantmatch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "grantmatch_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "route"},
	)

	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grantmatch_notifications_published_total",
			Help: "Notifications handed to delivery channels",
		},
		[]string{"channel", "result"},
	)
)
