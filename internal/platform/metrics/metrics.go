package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Acquisitions counts primary fetches by detector verdict (ok, shell, blocked, failed).
	Acquisitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapshot",
			Name:      "acquisitions_total",
			Help:      "Primary page fetches by detector verdict",
		},
		[]string{"verdict"},
	)

	// Prerenders counts prerender proxy fetches by trigger (forced, shell).
	Prerenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapshot",
			Name:      "prerender_total",
			Help:      "Prerender proxy fetches by trigger",
		},
		[]string{"reason"},
	)

	// Probes counts external link HEAD probes by result (ok, broken).
	Probes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapshot",
			Name:      "probes_total",
			Help:      "External link liveness probes by result",
		},
		[]string{"result"},
	)

	// RequestDuration observes whole snapshot durations by outcome.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "snapshot",
			Name:      "request_duration_seconds",
			Help:      "Duration of page snapshots in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 9), // 0.25s to ~64s
		},
		[]string{"outcome"},
	)
)
