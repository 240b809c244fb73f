// Package metrics exports workflow outcomes as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "orderflow"

// WorkflowMetrics implements ports.WorkflowMetrics.
type WorkflowMetrics struct {
	transitions        *prometheus.CounterVec
	denials            *prometheus.CounterVec
	auditDegraded      prometheus.Counter
	concurrencyRetries prometheus.Counter
	notificationFailed prometheus.Counter
	delayBuckets       *prometheus.GaugeVec
}

// NewWorkflowMetrics registers the workflow collectors with reg.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	factory := promauto.With(reg)
	return &WorkflowMetrics{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Committed state changes by machine and edge.",
		}, []string{"machine", "from", "to"}),
		denials: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_denied_total",
			Help:      "Refused transition attempts by error kind.",
		}, []string{"kind"}),
		auditDegraded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_write_degraded_total",
			Help:      "Committed transitions whose audit entry could not be written.",
		}),
		concurrencyRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "concurrency_retries_total",
			Help:      "Transition attempts retried after a version conflict.",
		}),
		notificationFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Notifications the dispatcher failed to hand off.",
		}),
		delayBuckets: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_orders_by_delay",
			Help:      "Open orders per lifecycle stage and delay bucket.",
		}, []string{"stage", "bucket"}),
	}
}

func (m *WorkflowMetrics) TransitionApplied(machine, from, to string) {
	m.transitions.WithLabelValues(machine, from, to).Inc()
}

func (m *WorkflowMetrics) TransitionDenied(kind string) {
	m.denials.WithLabelValues(kind).Inc()
}

func (m *WorkflowMetrics) AuditWriteDegraded() {
	m.auditDegraded.Inc()
}

func (m *WorkflowMetrics) ConcurrencyRetry() {
	m.concurrencyRetries.Inc()
}

func (m *WorkflowMetrics) NotificationFailed() {
	m.notificationFailed.Inc()
}

// SetDelayBuckets replaces the gauges of stage. Buckets absent from counts drop to 0.
func (m *WorkflowMetrics) SetDelayBuckets(stage string, counts map[string]int) {
	m.delayBuckets.DeletePartialMatch(prometheus.Labels{"stage": stage})
	for bucket, n := range counts {
		m.delayBuckets.WithLabelValues(stage, bucket).Set(float64(n))
	}
}
