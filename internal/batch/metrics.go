package batch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promptbench",
			Subsystem: "batch",
			Name:      "runs_total",
			Help:      "Total number of batch runs by outcome",
		},
		[]string{"outcome"},
	)

	inferenceCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promptbench",
			Subsystem: "batch",
			Name:      "inference_calls_total",
			Help:      "Total number of inference calls by model and status",
		},
		[]string{"model", "status"},
	)

	inferenceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "promptbench",
			Subsystem: "batch",
			Name:      "inference_duration_seconds",
			Help:      "Duration of inference calls in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"model"},
	)

	runInProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "promptbench",
			Subsystem: "batch",
			Name:      "run_in_progress",
			Help:      "1 while a batch run is in progress",
		},
	)
)

func init() {
	prometheus.MustRegister(runsTotal, inferenceCallsTotal, inferenceDuration, runInProgress)
}

// outcome labels for runsTotal
const (
	outcomeCompleted = "completed"
	outcomeFailed    = "failed"
	outcomeRejected  = "rejected"
	outcomeSkipped   = "skipped"
)
