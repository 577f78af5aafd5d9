// Package metrics exposes auth counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AuthMetrics counts login and registration outcomes.
type AuthMetrics struct {
	Logins        *prometheus.CounterVec
	Registrations *prometheus.CounterVec
	Lockouts      prometheus.Counter
}

// NewAuthMetrics registers the counters with reg.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"outcome"}),
		Lockouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "lockouts_total",
			Help:      "Account and ip pairs locked after repeated failures.",
		}),
	}
	reg.MustRegister(m.Logins, m.Registrations, m.Lockouts)
	return m
}

func (m *AuthMetrics) ObserveLogin(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *AuthMetrics) ObserveRegistration(outcome string) {
	m.Registrations.WithLabelValues(outcome).Inc()
}

func (m *AuthMetrics) ObserveLockout() {
	m.Lockouts.Inc()
}
