package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	DuplicateChecks        prometheus.Counter
	DuplicateLookupLatency *prometheus.HistogramVec
	DuplicatesFound        *prometheus.CounterVec
	PagesLoaded            *prometheus.CounterVec
	PeppolOperations       *prometheus.CounterVec
	RequestLatency         *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		DuplicateChecks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fakturo_duplicate_checks_total",
			Help: "Total number of duplicate-contact checks executed",
		}),
		DuplicateLookupLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fakturo_duplicate_lookup_seconds",
			Help:    "Latency of contact-search lookups per detection pass",
			Buckets: prometheus.DefBuckets,
		}, []string{"pass"}),
		DuplicatesFound: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fakturo_duplicates_found_total",
			Help: "Potential duplicates flagged, by match reason",
		}, []string{"reason"}),
		PagesLoaded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fakturo_pages_loaded_total",
			Help: "Paginated list pages loaded, by list and outcome",
		}, []string{"list", "outcome"}),
		PeppolOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fakturo_peppol_operations_total",
			Help: "PEPPOL workflow operations, by operation and outcome",
		}, []string{"operation", "outcome"}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fakturo_http_request_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveLookupLatency records one duplicate-detection pass duration.
func (m *Metrics) ObserveLookupLatency(pass string, d time.Duration) {
	if m == nil {
		return
	}
	m.DuplicateLookupLatency.WithLabelValues(pass).Observe(d.Seconds())
}

// CountPeppolOperation records a workflow operation outcome.
func (m *Metrics) CountPeppolOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.PeppolOperations.WithLabelValues(operation, outcome).Inc()
}

// CountPageLoad records a paginated fetch outcome.
func (m *Metrics) CountPageLoad(list, outcome string) {
	if m == nil {
		return
	}
	m.PagesLoaded.WithLabelValues(list, outcome).Inc()
}
