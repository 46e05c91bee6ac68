package infra

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records upstream request counts and latency per provider.
// A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics registers the upstream collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finflux_upstream_requests_total",
				Help: "Upstream API requests by provider and HTTP status",
			},
			[]string{"provider", "status"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finflux_upstream_request_seconds",
				Help:    "Upstream API request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
	}
}

func (m *Metrics) observe(provider, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(provider, status).Inc()
	m.latency.WithLabelValues(provider).Observe(elapsed.Seconds())
}
