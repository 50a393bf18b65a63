package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts by outcome",
		},
		[]string{"outcome"},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	SessionsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_sessions_issued_total",
			Help: "Total number of sessions issued",
		},
	)

	SessionsRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_sessions_revoked_total",
			Help: "Total number of sessions terminated by logout",
		},
	)

	SessionValidationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_session_validations_failed_total",
			Help: "Total number of rejected session cookies by reason",
		},
		[]string{"reason"},
	)

	RevokedSessionsCleanupDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_revoked_sessions_cleanup_deleted_total",
			Help: "Total number of expired session revocations deleted during cleanup",
		},
	)
)
