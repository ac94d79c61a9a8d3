package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors that report attachment store activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	operations          *prometheus.CounterVec
	deleteRetries       prometheus.Counter
	deleteFailures      prometheus.Counter
	fileCleanupFailures prometheus.Counter
}

// MustNewMetrics constructs the collectors and registers them with reg
// (prometheus.DefaultRegisterer when nil). Registration errors panic, which
// surfaces duplicate wiring at start-up. Tests should pass a fresh registry.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vault",
				Subsystem: "attachments",
				Name:      "operations_total",
				Help:      "Attachment store operations by name and outcome.",
			},
			[]string{"op", "status"},
		),
		deleteRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vault",
			Subsystem: "attachments",
			Name:      "delete_retries_total",
			Help:      "Row deletions that had to be retried because of contention.",
		}),
		deleteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vault",
			Subsystem: "attachments",
			Name:      "delete_failures_total",
			Help:      "Row deletions that still failed after the retry budget.",
		}),
		fileCleanupFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vault",
			Subsystem: "attachments",
			Name:      "file_cleanup_failures_total",
			Help:      "Payload removals that failed after the row was deleted.",
		}),
	}

	reg.MustRegister(m.operations, m.deleteRetries, m.deleteFailures, m.fileCleanupFailures)
	return m
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.operations.WithLabelValues(op, status).Inc()
}

func (m *Metrics) retry() {
	if m != nil {
		m.deleteRetries.Inc()
	}
}

func (m *Metrics) deleteFailed() {
	if m != nil {
		m.deleteFailures.Inc()
	}
}

func (m *Metrics) cleanupFailed() {
	if m != nil {
		m.fileCleanupFailures.Inc()
	}
}
