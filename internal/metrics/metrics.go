// Package metrics exposes prometheus instruments for the broadcast core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "soundroom_rooms_active",
		Help: "Rooms currently resident in the registry.",
	})
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soundroom_rooms_created_total",
		Help: "Rooms created since process start.",
	})
	RoomsReclaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soundroom_rooms_reclaimed_total",
		Help: "Empty rooms reclaimed after the idle window.",
	})
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "soundroom_connections_active",
		Help: "Live websocket connections.",
	})
	EventsRouted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soundroom_events_routed_total",
		Help: "Sound events accepted for fan-out.",
	})
	Deliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soundroom_deliveries_total",
		Help: "Per-connection deliveries pushed to transports.",
	})
	DeliveriesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soundroom_deliveries_dropped_total",
		Help: "Deliveries skipped because the transport was closed or backpressured.",
	})
	EventsMalformed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soundroom_events_malformed_total",
		Help: "Inbound payloads dropped at the session boundary.",
	})
	EventsThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soundroom_events_throttled_total",
		Help: "Inbound events dropped by the per-client trigger limit.",
	})
)
