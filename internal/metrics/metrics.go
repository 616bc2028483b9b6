// Package metrics exposes relay activity as Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "relaychat"

// Metrics implements core.Recorder on top of Prometheus collectors.
type Metrics struct {
	connections      prometheus.Gauge
	connectionsTotal prometheus.Counter
	joins            prometheus.Counter
	rejected         *prometheus.CounterVec
	messages         prometheus.Counter
	deliveries       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of live WebSocket connections.",
		}),
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total number of accepted connections.",
		}),
		joins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "joins_total",
			Help:      "Total number of successful room joins.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_rejected_total",
			Help:      "Rejected join/send requests by operation and error code.",
		}, []string{"op", "code"}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_relayed_total",
			Help:      "Messages persisted and broadcast.",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Per-connection delivery attempts by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.connections, m.connectionsTotal, m.joins, m.rejected, m.messages, m.deliveries)
	return m
}

func (m *Metrics) ConnectionOpened() {
	m.connections.Inc()
	m.connectionsTotal.Inc()
}

func (m *Metrics) ConnectionClosed() {
	m.connections.Dec()
}

func (m *Metrics) JoinAccepted() {
	m.joins.Inc()
}

func (m *Metrics) Rejected(op, code string) {
	m.rejected.WithLabelValues(op, code).Inc()
}

func (m *Metrics) MessageRelayed(delivered, failed int) {
	m.messages.Inc()
	m.deliveries.WithLabelValues("delivered").Add(float64(delivered))
	m.deliveries.WithLabelValues("failed").Add(float64(failed))
}
