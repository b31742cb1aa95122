package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the complaint module: intake volume, the
// lifecycle churn, and escalations.
type Metrics struct {
	ComplaintsSubmitted prometheus.Counter
	StatusUpdates       prometheus.Counter
	ComplaintsResolved  prometheus.Counter
	ComplaintsForwarded prometheus.Counter
	ForwardsRejected    prometheus.Counter
	SubmitDuration      prometheus.Histogram
}

// New creates a Metrics instance with all complaint module metrics registered.
func New() *Metrics {
	return &Metrics{
		ComplaintsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cityline_complaints_submitted_total",
			Help: "Total number of complaints accepted at intake",
		}),
		StatusUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cityline_complaint_status_updates_total",
			Help: "Total number of successful status updates",
		}),
		ComplaintsResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cityline_complaints_resolved_total",
			Help: "Status updates that entered RESOLVED",
		}),
		ComplaintsForwarded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cityline_complaints_forwarded_total",
			Help: "Complaints escalated to a district department",
		}),
		ForwardsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cityline_forwards_rejected_total",
			Help: "Forwarding attempts rejected by ownership or district checks",
		}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cityline_complaint_submit_duration_seconds",
			Help:    "Duration of complaint intake (resolve + persist)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveSubmit records the duration of one intake attempt.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSubmit(start time.Time) {
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}
