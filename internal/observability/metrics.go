// Package observability wires tracing and metrics for the data engine.
//
// This file exposes the engine-level Prometheus collectors. HTTP traffic is
// instrumented separately in the middleware package; the collectors here
// track the cache and offline queue themselves, with label cardinality
// bounded to the two media kinds and a small set of outcomes.
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// CacheEvictions counts rows removed by eviction passes, per kind.
	CacheEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total cached rows removed by the eviction policy.",
		},
		[]string{"kind"},
	)

	// CacheReads counts point lookups by kind and outcome (hit/miss).
	CacheReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_reads_total",
			Help: "Total cache point lookups.",
		},
		[]string{"kind", "outcome"},
	)

	// CacheSizeBytes gauges the count-based footprint estimate after the
	// most recent write or eviction pass.
	CacheSizeBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_estimated_size_bytes",
			Help: "Estimated cache footprint (entry count x per-entry estimate).",
		},
	)

	// OfflineQueueDepth gauges the number of queued write intents.
	OfflineQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "offline_queue_depth",
			Help: "Write intents waiting for submission.",
		},
	)

	// SyncSubmissions counts drain submissions by outcome
	// (success/connectivity/permanent).
	SyncSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_submissions_total",
			Help: "Offline queue drain submissions by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		CacheEvictions,
		CacheReads,
		CacheSizeBytes,
		OfflineQueueDepth,
		SyncSubmissions,
	)
}
