package request

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP layer collectors.
type Metrics struct {
	EndpointLatency *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		EndpointLatency: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "identrust_endpoint_latency_seconds",
			Help:    "HTTP endpoint latency in seconds by method and route pattern",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "endpoint"}),
	}
}

func (m *Metrics) ObserveEndpointLatency(method, endpoint string, seconds float64) {
	m.EndpointLatency.WithLabelValues(method, endpoint).Observe(seconds)
}
