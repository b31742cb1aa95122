package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the notification dispatcher. Everything
// is labelled by channel so a failing provider stands out.
type Metrics struct {
	Enqueued  *prometheus.CounterVec
	Delivered *prometheus.CounterVec
	Failed    *prometheus.CounterVec
	Retried   *prometheus.CounterVec
	Dropped   *prometheus.CounterVec
}

// New creates a Metrics instance with all notification metrics registered.
func New() *Metrics {
	return &Metrics{
		Enqueued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cityline_notifications_enqueued_total",
			Help: "Notifications accepted onto the delivery queue",
		}, []string{"channel"}),
		Delivered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cityline_notifications_delivered_total",
			Help: "Notifications successfully delivered",
		}, []string{"channel"}),
		Failed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cityline_notifications_failed_total",
			Help: "Delivery attempts that returned an error",
		}, []string{"channel"}),
		Retried: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cityline_notifications_retried_total",
			Help: "Deliveries re-queued after a failed attempt",
		}, []string{"channel"}),
		Dropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cityline_notifications_dropped_total",
			Help: "Notifications lost to a full queue",
		}, []string{"channel"}),
	}
}
