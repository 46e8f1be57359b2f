package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the relay's Prometheus collectors.
type Metrics struct {
	ActiveRooms       prometheus.Gauge
	ActiveConnections prometheus.Gauge
	RelayedEvents     *prometheus.CounterVec
	RoomsDestroyed    *prometheus.CounterVec
	JoinsRejected     *prometheus.CounterVec

	registry *prometheus.Registry
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	factory := promauto.With(reg)

	return &Metrics{
		ActiveRooms: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "hushroom",
			Name:      "active_rooms",
			Help:      "Number of live rooms in the registry.",
		}),
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "hushroom",
			Name:      "active_connections",
			Help:      "Number of connected room members.",
		}),
		RelayedEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hushroom",
			Name:      "relayed_events_total",
			Help:      "Events fanned out to room members, by event type.",
		}, []string{"type"}),
		RoomsDestroyed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hushroom",
			Name:      "rooms_destroyed_total",
			Help:      "Rooms destroyed, by reason.",
		}, []string{"reason"}),
		JoinsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hushroom",
			Name:      "joins_rejected_total",
			Help:      "Join attempts rejected, by reason.",
		}, []string{"reason"}),

		registry: reg,
	}
}

// Handler exposes the collectors at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
