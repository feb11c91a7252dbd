// Package metrics exposes the Prometheus collectors of the fulfillment core.
//
// A Metrics value owns its registry so tests can create independent instances.
// The zero value of *Metrics (nil) is a no-op, which lets handlers and jobs record
// unconditionally.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "labdesk"

// Metrics holds all labdesk collectors.
type Metrics struct {
	registry *prometheus.Registry

	// OrderTransitions counts committed order status changes.
	OrderTransitions *prometheus.CounterVec
	// VersionConflicts counts compare-and-commit writes that lost the race.
	VersionConflicts *prometheus.CounterVec
	// Notifications counts report-ready notifications by outcome.
	Notifications *prometheus.CounterVec
	// LabQueueDepth is the number of worklist items per priority.
	LabQueueDepth *prometheus.GaugeVec
	// AutoAssignments counts collections dispatched by the auto-assignment job.
	AutoAssignments *prometheus.CounterVec
	// CircuitBreakerState mirrors gobreaker states (0 closed, 1 half-open, 2 open).
	CircuitBreakerState *prometheus.GaugeVec
}

// New creates a Metrics instance with Go runtime and process collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.OrderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Total number of committed order status transitions",
		},
		[]string{"source", "from", "to"},
	)

	m.VersionConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "version_conflicts_total",
			Help:      "Total number of optimistic concurrency conflicts",
		},
		[]string{"aggregate"},
	)

	m.Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_notifications_total",
			Help:      "Total number of report-ready notifications",
		},
		[]string{"channel", "status"},
	)

	m.LabQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lab_queue_depth",
			Help:      "Number of lab worklist items",
		},
		[]string{"priority"},
	)

	m.AutoAssignments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_assignments_total",
			Help:      "Total number of automatic collector assignments",
		},
		[]string{"status"},
	)

	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	registry.MustRegister(
		m.OrderTransitions,
		m.VersionConflicts,
		m.Notifications,
		m.LabQueueDepth,
		m.AutoAssignments,
		m.CircuitBreakerState,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordTransition(source, from, to string) {
	if m == nil {
		return
	}
	m.OrderTransitions.WithLabelValues(source, from, to).Inc()
}

func (m *Metrics) RecordVersionConflict(aggregate string) {
	if m == nil {
		return
	}
	m.VersionConflicts.WithLabelValues(aggregate).Inc()
}

func (m *Metrics) RecordNotification(channel string, success bool) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(channel, statusLabel(success)).Inc()
}

func (m *Metrics) RecordAutoAssignment(success bool) {
	if m == nil {
		return
	}
	m.AutoAssignments.WithLabelValues(statusLabel(success)).Inc()
}

// SetLabQueueDepth replaces the gauge values with the given per-priority counts.
func (m *Metrics) SetLabQueueDepth(depth map[string]int) {
	if m == nil {
		return
	}
	m.LabQueueDepth.Reset()
	for priority, n := range depth {
		m.LabQueueDepth.WithLabelValues(priority).Set(float64(n))
	}
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
