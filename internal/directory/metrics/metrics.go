package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the directory module. Tracks registry
// growth and the routing hot path.
type Metrics struct {
	InstitutionCreated prometheus.Counter
	DepartmentCreated  prometheus.Counter
	ResolveFallbacks   prometheus.Counter
	ResolveDuration    prometheus.Histogram
}

// New creates a Metrics instance with all directory module metrics registered.
func New() *Metrics {
	return &Metrics{
		InstitutionCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cityline_institutions_created_total",
			Help: "Total number of institutions registered",
		}),
		DepartmentCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cityline_departments_created_total",
			Help: "Total number of district departments registered",
		}),
		ResolveFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cityline_assignment_province_fallbacks_total",
			Help: "Assignments that fell back to a province-wide match",
		}),
		ResolveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cityline_assignment_resolve_duration_seconds",
			Help:    "Duration of assignment resolution (intake critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveResolve records the duration of an assignment resolution.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveResolve(start time.Time) {
	m.ResolveDuration.Observe(time.Since(start).Seconds())
}
