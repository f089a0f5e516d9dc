// Package metrics holds the Prometheus collectors of the sync pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsTotal counts stream events by how they were handled:
	// close_write, dir_create, ignored or unknown.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dcache_sync_events_total",
		Help: "Inotify events received on the channel",
	}, []string{"kind"})

	TransfersEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dcache_sync_transfers_enqueued_total",
		Help: "Transfer requests put on the queue",
	})

	// TransfersTotal counts finished requests by status.
	TransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dcache_sync_transfers_total",
		Help: "Transfer requests processed by the workers",
	}, []string{"status"})

	TransferLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dcache_sync_transfer_latency_seconds",
		Help:    "Time from enqueue to FTS submission",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	ProbeAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dcache_sync_probe_attempts",
		Help:    "HEAD requests needed until the source was available",
		Buckets: prometheus.LinearBuckets(1, 1, 10),
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dcache_sync_queue_depth",
		Help: "Transfer requests waiting for a worker",
	})

	Watches = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dcache_sync_watches",
		Help: "Active inotify subscriptions on the current channel",
	})

	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dcache_sync_reconnects_total",
		Help: "Channels abandoned after a stream or subscription failure",
	})
)
