package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metric instruments
type Metrics struct {
	InventoryLoadsTotal   *prometheus.CounterVec
	InventoryResources    prometheus.Gauge
	SelectionChangesTotal *prometheus.CounterVec
	SpecEditsTotal        *prometheus.CounterVec
	FieldRejectionsTotal  *prometheus.CounterVec
	SourceFetchDuration   *prometheus.HistogramVec
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
}

// NewMetrics registers and returns all metrics on the default registry
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers all metrics on reg
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		InventoryLoadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudportal_inventory_loads_total",
			Help: "Total number of inventory snapshot loads",
		}, []string{"provider", "status"}),

		InventoryResources: f.NewGauge(prometheus.GaugeOpts{
			Name: "cloudportal_inventory_resources",
			Help: "Number of resources in the loaded snapshot",
		}),

		SelectionChangesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudportal_selection_changes_total",
			Help: "Total selection changes by kind",
		}, []string{"kind"}),

		SpecEditsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudportal_spec_edits_total",
			Help: "Total resource spec edits by outcome",
		}, []string{"outcome"}),

		FieldRejectionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudportal_spec_field_rejections_total",
			Help: "Total rejected spec fields by reason",
		}, []string{"reason"}),

		SourceFetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cloudportal_source_fetch_duration_seconds",
			Help:    "Inventory source fetch duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15},
		}, []string{"source"}),

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudportal_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "path", "status_code"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cloudportal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 5.0},
		}, []string{"method", "path"}),
	}
}

// RecordLoad records a snapshot load attempt
func (m *Metrics) RecordLoad(provider, status string, resources int) {
	m.InventoryLoadsTotal.WithLabelValues(provider, status).Inc()
	if status == "success" {
		m.InventoryResources.Set(float64(resources))
	}
}

// RecordSelection records an environment toggle or location change
func (m *Metrics) RecordSelection(kind string) {
	m.SelectionChangesTotal.WithLabelValues(kind).Inc()
}

// RecordEdit records the outcome of a spec edit and each rejected field reason
func (m *Metrics) RecordEdit(outcome string, rejectedReasons ...string) {
	m.SpecEditsTotal.WithLabelValues(outcome).Inc()
	for _, reason := range rejectedReasons {
		m.FieldRejectionsTotal.WithLabelValues(reason).Inc()
	}
}

// ObserveFetch records how long a source took to produce a snapshot
func (m *Metrics) ObserveFetch(source string, seconds float64) {
	m.SourceFetchDuration.WithLabelValues(source).Observe(seconds)
}
