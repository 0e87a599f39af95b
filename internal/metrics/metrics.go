package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Live viewer metrics
var (
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodecloud_sessions_active",
			Help: "Number of open live viewer sessions",
		},
	)

	SessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodecloud_sessions_total",
			Help: "Live viewer sessions by how they ended",
		},
		[]string{"result"}, // closed, error
	)

	FramesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodecloud_frames_sent_total",
			Help: "Render frames written to live clients",
		},
	)

	FrameBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nodecloud_frame_bytes",
			Help:    "Encoded render frame size in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 2, 8), // 256B to 32KB
		},
	)

	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nodecloud_tick_duration_seconds",
			Help:    "Time spent advancing and projecting one frame",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 10), // 50µs to ~25ms
		},
	)

	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodecloud_events_total",
			Help: "Pointer events received from live clients",
		},
		[]string{"type"},
	)

	Selections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodecloud_selections_total",
			Help: "Node selections forwarded to clients",
		},
		[]string{"kind"},
	)

	DatasetReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodecloud_dataset_reloads_total",
			Help: "Dataset reload attempts",
		},
		[]string{"status"}, // ok, error
	)

	DatasetNodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodecloud_dataset_nodes",
			Help: "Nodes in the current dataset graph",
		},
		[]string{"kind"},
	)
)
