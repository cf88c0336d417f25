// Package metrics registers the gateway's Prometheus instruments.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	SessionsExpired  prometheus.Counter
	Logins           *prometheus.CounterVec
	AuditDropped     prometheus.Counter
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates and registers all metrics on the given registerer, so tests
// can use an isolated registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_gateway_upstream_requests_total",
			Help: "Upstream API requests by method and status class.",
		}, []string{"method", "status_class"}),
		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_gateway_upstream_request_duration_seconds",
			Help:    "Upstream API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		SessionsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "admin_gateway_sessions_expired_total",
			Help: "Sessions cleared after an upstream 401.",
		}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_gateway_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		AuditDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "admin_gateway_audit_events_dropped_total",
			Help: "Audit events dropped because the worker queue was full.",
		}),
	}
}

// ObserveUpstreamRequest records one completed upstream request. A status of
// zero means the request never produced a response (transport failure).
func (m *Metrics) ObserveUpstreamRequest(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	class := "error"
	if status > 0 {
		class = strconv.Itoa(status/100) + "xx"
	}
	m.UpstreamRequests.WithLabelValues(method, class).Inc()
	m.UpstreamDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// IncSessionExpired counts a session cleared by 401 handling.
func (m *Metrics) IncSessionExpired() {
	if m == nil {
		return
	}
	m.SessionsExpired.Inc()
}

// IncLogin counts a login attempt outcome ("success", "failure",
// "locked_out", "error").
func (m *Metrics) IncLogin(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

// IncAuditDropped counts an audit event dropped under backpressure.
func (m *Metrics) IncAuditDropped() {
	if m == nil {
		return
	}
	m.AuditDropped.Inc()
}
