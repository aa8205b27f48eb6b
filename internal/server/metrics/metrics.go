// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Metrics groups the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	TokensIssued *prometheus.CounterVec
	TokensDenied *prometheus.CounterVec
	ResetEvents  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "researchdt_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "researchdt_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		TokensIssued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "researchdt_tokens_issued_total",
				Help: "Signed tokens issued by kind",
			},
			[]string{"kind"},
		),
		TokensDenied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "researchdt_tokens_denied_total",
				Help: "Rejected token presentations by reason",
			},
			[]string{"reason"},
		),
		ResetEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "researchdt_password_reset_total",
				Help: "Password reset requests and confirmations by result",
			},
			[]string{"stage", "result"},
		),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.HTTPRequests, m.HTTPDuration, m.TokensIssued, m.TokensDenied, m.ResetEvents} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) TokenIssued(kind string) {
	if m == nil {
		return
	}
	m.TokensIssued.WithLabelValues(kind).Inc()
}

func (m *Metrics) TokenDenied(reason string) {
	if m == nil {
		return
	}
	m.TokensDenied.WithLabelValues(reason).Inc()
}

func (m *Metrics) Reset(stage, result string) {
	if m == nil {
		return
	}
	m.ResetEvents.WithLabelValues(stage, result).Inc()
}
