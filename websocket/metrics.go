package websocket

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles Prometheus collectors for the chat hub
type Metrics struct {
	registry        *prometheus.Registry
	clients         prometheus.Gauge
	broadcastsTotal *prometheus.CounterVec
	broadcastDrops  prometheus.Counter
	messagesTotal   *prometheus.CounterVec
	syncErrors      prometheus.Counter
}

// NewMetrics creates and registers the hub collectors
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "communityhub",
			Name:      "ws_clients",
			Help:      "Current connected WebSocket clients",
		}),
		broadcastsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "communityhub",
			Name:      "ws_broadcasts_total",
			Help:      "Total broadcast events by type",
		}, []string{"type"}),
		broadcastDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "communityhub",
			Name:      "ws_broadcast_drops_total",
			Help:      "Clients dropped because their send buffer was full",
		}),
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "communityhub",
			Name:      "chat_messages_total",
			Help:      "Chat messages appended to the store by origin",
		}, []string{"origin"}),
		syncErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "communityhub",
			Name:      "sync_errors_total",
			Help:      "Failed reconciliation attempts against the backend",
		}),
	}

	registry.MustRegister(
		m.clients,
		m.broadcastsTotal,
		m.broadcastDrops,
		m.messagesTotal,
		m.syncErrors,
	)
	return m
}

// Handler returns an HTTP handler exposing the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncClients adjusts the connected-client gauge by delta
func (m *Metrics) IncClients(delta float64) {
	if m == nil {
		return
	}
	m.clients.Add(delta)
}

// IncBroadcasts increments the broadcast counter for an event type
func (m *Metrics) IncBroadcasts(eventType string) {
	if m == nil {
		return
	}
	m.broadcastsTotal.WithLabelValues(eventType).Inc()
}

// IncDrops increments the slow-client drop counter
func (m *Metrics) IncDrops() {
	if m == nil {
		return
	}
	m.broadcastDrops.Inc()
}

// IncMessages increments the appended-message counter for an origin
// ("user" or "simulator")
func (m *Metrics) IncMessages(origin string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(origin).Inc()
}

// IncSyncErrors increments the reconciliation failure counter
func (m *Metrics) IncSyncErrors() {
	if m == nil {
		return
	}
	m.syncErrors.Inc()
}
