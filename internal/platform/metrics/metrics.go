package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the domain Prometheus metrics. A nil *Metrics is valid and
// records nothing, so services can run without instrumentation in tests.
type Metrics struct {
	CredentialsIssued   *prometheus.CounterVec
	CredentialsUpdated  *prometheus.CounterVec
	Verifications       *prometheus.CounterVec
	VerificationLatency *prometheus.HistogramVec
	IdentitiesSaved     *prometheus.CounterVec
	DemoTransitions     *prometheus.CounterVec
	AuditDropped        prometheus.Counter
}

// New creates the metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CredentialsIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "identrust_credentials_issued_total",
			Help: "Total number of credentials issued, labeled by credential type",
		}, []string{"type"}),
		CredentialsUpdated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "identrust_credentials_updated_total",
			Help: "Total number of credential patches that changed a record, labeled by field",
		}, []string{"field"}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "identrust_verifications_total",
			Help: "Total number of recorded verifications, labeled by method and result",
		}, []string{"method", "result"}),
		VerificationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "identrust_verification_duration_seconds",
			Help:    "End-to-end duration of verification requests including the simulated delay",
			Buckets: []float64{.01, .1, .5, 1, 1.5, 2, 3, 5},
		}, []string{"method"}),
		IdentitiesSaved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "identrust_identities_saved_total",
			Help: "Total number of identity saves, labeled by outcome (created or updated)",
		}, []string{"outcome"}),
		DemoTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "identrust_demo_transitions_total",
			Help: "Total number of demo walkthrough transitions, labeled by action",
		}, []string{"action"}),
		AuditDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "identrust_audit_events_dropped_total",
			Help: "Total number of audit events dropped because the async buffer was full",
		}),
	}
}

func (m *Metrics) IncrementCredentialsIssued(credentialType string) {
	if m == nil {
		return
	}
	m.CredentialsIssued.WithLabelValues(credentialType).Inc()
}

func (m *Metrics) IncrementCredentialsUpdated(field string) {
	if m == nil {
		return
	}
	m.CredentialsUpdated.WithLabelValues(field).Inc()
}

func (m *Metrics) IncrementVerifications(method, result string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(method, result).Inc()
}

func (m *Metrics) ObserveVerificationLatency(method string, seconds float64) {
	if m == nil {
		return
	}
	m.VerificationLatency.WithLabelValues(method).Observe(seconds)
}

func (m *Metrics) IncrementIdentitiesSaved(outcome string) {
	if m == nil {
		return
	}
	m.IdentitiesSaved.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementDemoTransitions(action string) {
	if m == nil {
		return
	}
	m.DemoTransitions.WithLabelValues(action).Inc()
}

func (m *Metrics) IncrementAuditDropped() {
	if m == nil {
		return
	}
	m.AuditDropped.Inc()
}
