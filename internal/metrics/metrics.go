// Package metrics holds the Prometheus collectors shared across the service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "pulse"

var (
	// PhotosModerated counts moderation decisions by outcome
	PhotosModerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photos_moderated_total",
			Help:      "Total number of photo moderation decisions.",
		},
		[]string{"decision"},
	)

	// PushSent counts push notification attempts by result
	PushSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_sent_total",
			Help:      "Total number of push notification attempts.",
		},
		[]string{"result"},
	)

	// WSConnections is the number of open websocket connections
	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections",
			Help:      "Number of open websocket connections.",
		},
	)
)

// Register adds the domain collectors to reg
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{PhotosModerated, PushSent, WSConnections} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
