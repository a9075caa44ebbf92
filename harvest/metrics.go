package harvest

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the harvester.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesTotal      *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	RecordsTotal    *prometheus.CounterVec
	FetchErrors     *prometheus.CounterVec
	FallbackTotal   *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated
// registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_pages_total",
			Help: "Total listing pages fetched by outcome.",
		},
		[]string{"outcome"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "harvester_request_duration_seconds",
			Help:    "Listing API request latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	records := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_records_total",
			Help: "Total listing records by normalization result.",
		},
		[]string{"result"},
	)
	fetchErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_fetch_errors_total",
			Help: "Total fetch errors by kind.",
		},
		[]string{"kind"},
	)
	fallback := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_description_fallback_total",
			Help: "Detail-page description fallback attempts by result.",
		},
		[]string{"result"},
	)

	registry.MustRegister(pages, requestDuration, records, fetchErrors, fallback)

	return &Metrics{
		Registry:        registry,
		PagesTotal:      pages,
		RequestDuration: requestDuration,
		RecordsTotal:    records,
		FetchErrors:     fetchErrors,
		FallbackTotal:   fallback,
	}
}

// IncPage increments the pages counter for an outcome label.
func (m *Metrics) IncPage(outcome string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveDuration records a listing API request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncRecord increments the records counter for a result label.
func (m *Metrics) IncRecord(result string) {
	if m == nil {
		return
	}
	m.RecordsTotal.WithLabelValues(result).Inc()
}

// IncFetchError increments the fetch error counter for a kind.
func (m *Metrics) IncFetchError(kind FetchErrorKind) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(string(kind)).Inc()
}

// IncFallback increments the fallback counter for a result label.
func (m *Metrics) IncFallback(result string) {
	if m == nil {
		return
	}
	m.FallbackTotal.WithLabelValues(result).Inc()
}
