package server

import (
	"errors"
	"net/http"

	"github.com/Tyrowin/roomchat/internal/relay"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for one hub. Each hub has its own
// registry so several hubs can coexist in one process.
type Metrics struct {
	registry         *prometheus.Registry
	joins            prometheus.Counter
	messagesRouted   prometheus.Counter
	messagesDropped  *prometheus.CounterVec
	deliveryFailures prometheus.Counter
}

func newMetrics(r *relay.Relay) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		joins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roomchat_joins_total",
			Help: "Successful room joins.",
		}),
		messagesRouted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roomchat_messages_routed_total",
			Help: "Chat messages delivered to a room.",
		}),
		messagesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomchat_events_dropped_total",
			Help: "Inbound events discarded by the relay, by reason.",
		}, []string{"reason"}),
		deliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roomchat_delivery_failures_total",
			Help: "Outbound frames that could not be queued for a client.",
		}),
	}

	connections := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "roomchat_connections",
		Help: "Live connections known to the relay.",
	}, func() float64 { return float64(r.Stats().Connections) })
	rooms := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "roomchat_rooms",
		Help: "Rooms with at least one member.",
	}, func() float64 { return float64(r.Stats().Rooms) })

	m.registry.MustRegister(
		m.joins,
		m.messagesRouted,
		m.messagesDropped,
		m.deliveryFailures,
		connections,
		rooms,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the hub's metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observe(kind relay.EventKind) {
	switch kind {
	case relay.EventJoin:
		m.joins.Inc()
	case relay.EventChat:
		m.messagesRouted.Inc()
	}
}

func (m *Metrics) dropped(err error) {
	reason := "other"
	switch {
	case errors.Is(err, relay.ErrInvalidRoomID):
		reason = "invalid_room"
	case errors.Is(err, relay.ErrMalformedMessage):
		reason = "malformed"
	case errors.Is(err, relay.ErrRoomMismatch):
		reason = "room_mismatch"
	}
	m.messagesDropped.WithLabelValues(reason).Inc()
}
