package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NotificationMetrics records the outcome of each notification dispatch.
type NotificationMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewNotificationMetrics registers the dispatch metrics on the provided registerer.
func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "groupcollect_notifications_total",
		Help: "Notification dispatch attempts by kind and final status.",
	}, []string{"kind", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "groupcollect_notification_dispatch_seconds",
		Help:    "Time spent handing a notification to the mail transport.",
		Buckets: prometheus.DefBuckets,
	}, []string{"transport"})
	reg.MustRegister(total, duration)
	return &NotificationMetrics{total: total, duration: duration}
}

// IncDispatched counts one dispatch for kind ending in status.
func (m *NotificationMetrics) IncDispatched(kind, status string) {
	if m == nil || m.total == nil {
		return
	}
	m.total.WithLabelValues(normalizeLabel(kind), normalizeLabel(status)).Inc()
}

// ObserveSend records how long the transport took to accept a message.
func (m *NotificationMetrics) ObserveSend(transport string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(transport)).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
