package service

import (
	"github.com/AlibekovAA/toggle-task/internal/observability/metrics"
)

func recordRegistration(outcome string) {
	metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
}

func recordLogin(outcome string) {
	metrics.LoginsTotal.WithLabelValues(outcome).Inc()
}

func recordSessionIssued() {
	metrics.SessionsIssued.Inc()
}

func recordSessionRevoked() {
	metrics.SessionsRevoked.Inc()
}

func recordSessionRejected(reason string) {
	metrics.SessionValidationsFailed.WithLabelValues(reason).Inc()
}
