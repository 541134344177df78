package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemindersSelected counts reminders returned by the due-batch query.
	RemindersSelected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meetsync_reminders_selected_total",
			Help: "Total number of reminders selected for dispatch",
		},
	)

	// RemindersDispatched counts reminders marked sent, by result
	// (complete|partial). Partial means at least one channel call failed.
	RemindersDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetsync_reminders_dispatched_total",
			Help: "Total number of reminders marked sent",
		},
		[]string{"result"},
	)

	// ChannelSends counts per-channel delivery attempts by channel
	// (email|push|in_app) and result (success|failure|skipped).
	ChannelSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetsync_channel_sends_total",
			Help: "Total number of per-channel reminder delivery attempts",
		},
		[]string{"channel", "result"},
	)

	// DispatchTickDuration measures the wall time of each dispatch tick.
	DispatchTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meetsync_dispatch_tick_seconds",
			Help:    "Duration of reminder dispatch ticks",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SessionsCleaned counts expired session rows removed by maintenance.
	SessionsCleaned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meetsync_sessions_cleaned_total",
			Help: "Total number of expired sessions removed",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meetsync_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
