// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_submissions_total",
			Help: "Total number of submission attempts",
		},
		[]string{"result"},
	)

	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_evaluations_total",
			Help: "Total number of evaluation attempts",
		},
		[]string{"result"},
	)

	TeamScoreHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_evaluation_score",
			Help:    "Distribution of evaluation total scores",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
		[]string{"jury"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
