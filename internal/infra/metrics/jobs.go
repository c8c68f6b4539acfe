package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(jobsTotal, jobDurationMs)
}

var (
	jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_total",
			Help: "Jobs reaching a terminal state, by kind and status.",
		},
		[]string{"kind", "status"},
	)

	jobDurationMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "job_duration_ms",
			Help:    "Job execution time (running to terminal) in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		},
		[]string{"kind"},
	)
)

func ObserveJob(kind, status string, elapsed time.Duration) {
	jobsTotal.WithLabelValues(kind, status).Inc()
	jobDurationMs.WithLabelValues(kind).Observe(float64(elapsed / time.Millisecond))
}
