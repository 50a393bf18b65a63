package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const dbSubsystem = "db"

var (
	DBPoolAcquiredConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Subsystem: dbSubsystem,
		Name:      "pool_acquired_connections",
		Help:      "Connections currently checked out of the postgres pool",
	})

	DBPoolIdleConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Subsystem: dbSubsystem,
		Name:      "pool_idle_connections",
		Help:      "Idle connections in the postgres pool",
	})

	DBPoolMaxConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Subsystem: dbSubsystem,
		Name:      "pool_max_connections",
		Help:      "Configured maximum size of the postgres pool",
	})

	DBPoolTotalConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Subsystem: dbSubsystem,
		Name:      "pool_total_connections",
		Help:      "Open connections in the postgres pool",
	})

	// DBQueryDurationSeconds is labelled by driver so postgres and sqlite
	// deployments share dashboards.
	DBQueryDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: dbSubsystem,
		Name:      "query_duration_seconds",
		Help:      "Store query latency by driver, operation and table",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"driver", "operation", "table"})

	DBQueryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: dbSubsystem,
		Name:      "query_errors_total",
		Help:      "Failed store queries by driver, operation, table and error type",
	}, []string{"driver", "operation", "table", "error_type"})

	DBRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: dbSubsystem,
		Name:      "retries_total",
		Help:      "Retried store operations",
	}, []string{"operation"})

	DBMigrationsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: dbSubsystem,
		Name:      "migrations_applied_total",
		Help:      "Schema migrations applied by driver",
	}, []string{"driver"})
)
