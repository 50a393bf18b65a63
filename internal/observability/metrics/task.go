package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TaskOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_operations_total",
			Help: "Total number of task mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	IncidentReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "incident_reports_total",
			Help: "Total number of incident reports by outcome",
		},
		[]string{"outcome"},
	)

	IncidentReportDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "incident_report_duration_seconds",
			Help:    "Duration of outbound incident report calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)
