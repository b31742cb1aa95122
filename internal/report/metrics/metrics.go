package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the report module. The cache counters
// make the hit rate visible so the TTL can be tuned against load.
type Metrics struct {
	ReportsGenerated  prometheus.Counter
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	AggregateDuration prometheus.Histogram
}

// New creates a Metrics instance with all report module metrics registered.
func New() *Metrics {
	return &Metrics{
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cityline_reports_generated_total",
			Help: "Performance reports aggregated from the source, excluding cache hits",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cityline_report_cache_hits_total",
			Help: "Performance report requests served from cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cityline_report_cache_misses_total",
			Help: "Performance report requests that had to aggregate",
		}),
		AggregateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cityline_report_aggregate_duration_seconds",
			Help:    "Duration of report aggregation against the source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// ObserveAggregate records one aggregation duration from its start time.
func (m *Metrics) ObserveAggregate(start time.Time) {
	m.AggregateDuration.Observe(time.Since(start).Seconds())
}
