// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	PersonalizationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalization_requests_total",
			Help: "Calls to the personalization service by outcome",
		},
		[]string{"outcome"},
	)

	PersonalizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "personalization_request_duration_seconds",
			Help:    "Round trip time of personalization calls",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	ProfileStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_store_operations_total",
			Help: "Profile store operations by store, op and outcome",
		},
		[]string{"store", "op", "outcome"},
	)

	RankedItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranked_items_count",
			Help:    "Number of annotated items per ranking call",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		},
	)
)

// Outcome labels shared by the counters above.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeNotFound = "not_found"
	OutcomeTimeout  = "timeout"
	OutcomeInvalid  = "invalid"
)
