package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections_active",
		Help: "Currently open WebSocket connections",
	})

	metricMessagesIn = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_messages_in_total",
		Help: "Total inbound WebSocket messages",
	})

	metricMessagesOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_messages_out_total",
		Help: "Total outbound WebSocket messages",
	})

	// Bounded label values: rate_limit, key_mismatch, version_mismatch.
	metricConnectionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_connections_rejected_total",
		Help: "Connections refused before or during handshake",
	}, []string{"reason"})
)
