// Package metrics holds the gateway's Prometheus collectors.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks forwarded-request duration by method and status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "corsair_request_duration_seconds",
			Help:    "Duration of forwarded requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	// RequestsTotal counts forwarded requests by method and status.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corsair_requests_total",
			Help: "Total number of forwarded requests",
		},
		[]string{"method", "status"},
	)

	// UpstreamErrorsTotal counts requests that failed before an upstream
	// response was received.
	UpstreamErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "corsair_upstream_errors_total",
			Help: "Total number of upstream request failures",
		},
	)

	// CorsDecisionsTotal counts engine outcomes by phase (preflight or
	// actual) and outcome (allowed or denied).
	CorsDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corsair_cors_decisions_total",
			Help: "Total number of CORS policy decisions",
		},
		[]string{"phase", "outcome"},
	)

	// PolicyReloadsTotal counts configuration reloads by result.
	PolicyReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corsair_policy_reloads_total",
			Help: "Total number of CORS policy reload attempts",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration,
		RequestsTotal,
		UpstreamErrorsTotal,
		CorsDecisionsTotal,
		PolicyReloadsTotal,
	)
}

// RecordRequest observes one forwarded request.
func RecordRequest(method string, status int, seconds float64) {
	s := strconv.Itoa(status)
	RequestsTotal.WithLabelValues(method, s).Inc()
	RequestDuration.WithLabelValues(method, s).Observe(seconds)
}

// RecordDecision observes one engine outcome.
func RecordDecision(preflight, allowed bool) {
	phase := "actual"
	if preflight {
		phase = "preflight"
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	CorsDecisionsTotal.WithLabelValues(phase, outcome).Inc()
}
