package arena

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Bounded cardinality only: no per-room or per-client labels.
var (
	metricRoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_rooms_active",
		Help: "Current number of live rooms",
	})

	metricClientsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_clients_connected",
		Help: "Current number of connected clients across all rooms",
	})

	metricTickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arena_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05},
	})

	metricBroadcastBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arena_broadcast_bytes_total",
		Help: "Total bytes of state snapshots sent",
	})
)
