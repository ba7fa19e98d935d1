package metrics

import "github.com/prometheus/client_golang/prometheus"

// GatewayMetrics tracks the websocket links to the protocol gateway.
type GatewayMetrics struct {
	ActiveConnections prometheus.Gauge
	FramesReceived    *prometheus.CounterVec
}

func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	m := &GatewayMetrics{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "active_connections",
			Help:      "Open websocket links to the protocol gateway.",
		}),
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "frames_received_total",
			Help:      "Frames received from the protocol gateway, by type.",
		}, []string{"type"}),
	}

	reg.MustRegister(m.ActiveConnections, m.FramesReceived)
	return m
}
