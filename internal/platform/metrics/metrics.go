package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the issuance pipeline.
type Metrics struct {
	CertificatesIssued  prometheus.Counter
	IssueFailures       *prometheus.CounterVec
	EventsConsumed      prometheus.Counter
	EventsDropped       prometheus.Counter
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
	RenderDuration      prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CertificatesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certserve_certificates_issued_total",
			Help: "Total number of certificates issued successfully",
		}),
		IssueFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certserve_issue_failures_total",
			Help: "Total number of failed issuance attempts by stage",
		}, []string{"stage"}),
		EventsConsumed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certserve_events_consumed_total",
			Help: "Total number of course-completed events consumed",
		}),
		EventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certserve_events_dropped_total",
			Help: "Total number of events dropped after a processing error",
		}),
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certserve_notifications_sent_total",
			Help: "Total number of outcome notifications published",
		}),
		NotificationsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certserve_notifications_failed_total",
			Help: "Total number of outcome notifications that failed to publish",
		}),
		RenderDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "certserve_render_duration_seconds",
			Help:    "Time spent rendering certificate artifacts",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// The helpers below are nil-safe so optional wiring (tests, partial setups)
// can skip metrics without guarding every call site.

func (m *Metrics) IncIssued() {
	if m != nil {
		m.CertificatesIssued.Inc()
	}
}

// IncIssueFailure records a failed issuance attempt at the given stage.
func (m *Metrics) IncIssueFailure(stage string) {
	if m != nil {
		m.IssueFailures.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) IncEventConsumed() {
	if m != nil {
		m.EventsConsumed.Inc()
	}
}

func (m *Metrics) IncEventDropped() {
	if m != nil {
		m.EventsDropped.Inc()
	}
}

func (m *Metrics) IncNotificationSent() {
	if m != nil {
		m.NotificationsSent.Inc()
	}
}

func (m *Metrics) IncNotificationFailed() {
	if m != nil {
		m.NotificationsFailed.Inc()
	}
}

func (m *Metrics) ObserveRenderDuration(seconds float64) {
	if m != nil {
		m.RenderDuration.Observe(seconds)
	}
}
