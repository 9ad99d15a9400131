// Package metrics provides Prometheus metrics for the admin gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	// GuardDecisions counts route-guard outcomes by state and reason.
	GuardDecisions *prometheus.CounterVec

	// CredentialFailures counts rejected credentials by reason
	// (malformed, expired, revoked).
	CredentialFailures *prometheus.CounterVec

	// UpstreamRequests counts calls to the SkyLab API by operation and
	// result (ok, api_error, transport_error).
	UpstreamRequests *prometheus.CounterVec
}

// New creates and registers the collectors on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the collectors on r. Tests pass a fresh registry.
func NewWith(r prometheus.Registerer) *Metrics {
	factory := promauto.With(r)
	return &Metrics{
		GuardDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_guard_decisions_total",
			Help: "Route guard outcomes per navigation attempt",
		}, []string{"state", "reason"}),
		CredentialFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_credential_failures_total",
			Help: "Rejected bearer credentials by reason",
		}, []string{"reason"}),
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_upstream_requests_total",
			Help: "Calls to the SkyLab API by operation and result",
		}, []string{"operation", "result"}),
	}
}
