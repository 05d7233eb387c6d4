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

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	MatchingCandidatesRanked = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matching_candidates_ranked",
			Help:    "Number of technicians ranked per matching request",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
		[]string{"task_type"},
	)

	MatchingCandidatesExcluded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_candidates_excluded_total",
			Help: "Technicians dropped by the candidate filter",
		},
		[]string{"task_type", "reason"},
	)

	MatchingSlowRankings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_slow_rankings_total",
			Help: "Ranking requests slower than the configured threshold",
		},
		[]string{"task_type"},
	)

	NotificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_delivered_total",
			Help: "Assignment notifications by channel and outcome",
		},
		[]string{"channel", "status"},
	)
)
