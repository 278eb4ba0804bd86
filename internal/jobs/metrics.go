package jobs

import "github.com/prometheus/client_golang/prometheus"

// Outcomes of one job run, used as the "result" label.
const (
	resultOK    = "ok"
	resultError = "error"
	resultPanic = "panic"
)

var (
	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "siakad",
			Subsystem: "job",
			Name:      "runs_total",
			Help:      "Background job runs by outcome",
		},
		[]string{"job", "result"},
	)

	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "siakad",
			Subsystem: "job",
			Name:      "duration_seconds",
			Help:      "Background job duration in seconds",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 60},
		},
		[]string{"job"},
	)

	// a sweep that keeps failing shows up as a stale timestamp
	jobLastSuccess = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "siakad",
			Subsystem: "job",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		},
		[]string{"job"},
	)
)

func init() {
	prometheus.MustRegister(jobRuns, jobDuration, jobLastSuccess)
}
