package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	SessionsProcessed *prometheus.CounterVec
	StageDuration     *prometheus.HistogramVec
	RedactionMatches  *prometheus.CounterVec
	FlagsRaised       *prometheus.CounterVec
	Transmissions     *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SessionsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scribed_sessions_processed_total",
			Help: "Sessions processed by the pipeline, labeled by final outcome",
		}, []string{"outcome"}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scribed_stage_duration_seconds",
			Help:    "Latency of each pipeline stage",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		RedactionMatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scribed_redaction_matches_total",
			Help: "Redaction matches by category",
		}, []string{"category"}),
		FlagsRaised: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scribed_policy_flags_total",
			Help: "Policy flags raised by the detector",
		}, []string{"flag"}),
		Transmissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scribed_report_transmissions_total",
			Help: "Compliance report transmission attempts by status",
		}, []string{"status"}),
	}
}

// ObserveStage records one stage's wall-clock duration.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// CountSession records the final outcome of one pipeline run.
func (m *Metrics) CountSession(outcome string) {
	if m == nil {
		return
	}
	m.SessionsProcessed.WithLabelValues(outcome).Inc()
}

// CountRedaction records redaction matches for one category.
func (m *Metrics) CountRedaction(category string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RedactionMatches.WithLabelValues(category).Add(float64(n))
}

// CountFlag records one raised policy flag.
func (m *Metrics) CountFlag(flag string) {
	if m == nil {
		return
	}
	m.FlagsRaised.WithLabelValues(flag).Inc()
}

// CountTransmission records one report transmission attempt by its status.
func (m *Metrics) CountTransmission(status string) {
	if m == nil {
		return
	}
	m.Transmissions.WithLabelValues(status).Inc()
}
