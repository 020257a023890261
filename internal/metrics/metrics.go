// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

// Package metrics defines the Prometheus instrumentation for FundCompass.
// All metrics are registered on the default registry via promauto and
// exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationsTotal counts recommendation requests by outcome
	// status (ok, no_eligible_schemes, error).
	RecommendationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fundcompass",
		Subsystem: "engine",
		Name:      "recommendations_total",
		Help:      "Recommendation requests by outcome status.",
	}, []string{"status"})

	// RecommendationDuration observes end-to-end pipeline latency.
	RecommendationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fundcompass",
		Subsystem: "engine",
		Name:      "recommendation_duration_seconds",
		Help:      "End-to-end recommendation pipeline latency.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	// StageDuration observes per-stage pipeline latency.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fundcompass",
		Subsystem: "engine",
		Name:      "stage_duration_seconds",
		Help:      "Latency of individual pipeline stages.",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
	}, []string{"stage"})

	// CacheHits counts response-cache hits.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fundcompass",
		Subsystem: "engine",
		Name:      "cache_hits_total",
		Help:      "Recommendation response cache hits.",
	})

	// CacheMisses counts response-cache misses.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fundcompass",
		Subsystem: "engine",
		Name:      "cache_misses_total",
		Help:      "Recommendation response cache misses.",
	})

	// SnapshotSchemes gauges the size of the active scheme snapshot.
	SnapshotSchemes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fundcompass",
		Subsystem: "engine",
		Name:      "snapshot_schemes",
		Help:      "Number of schemes in the active snapshot.",
	})

	// SnapshotTimestamp gauges the Unix time of the last snapshot swap.
	SnapshotTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fundcompass",
		Subsystem: "engine",
		Name:      "snapshot_timestamp_seconds",
		Help:      "Unix timestamp of the last snapshot swap.",
	})

	// IngestRequests counts upstream provider requests by result.
	IngestRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fundcompass",
		Subsystem: "ingest",
		Name:      "requests_total",
		Help:      "Upstream mfapi requests by result (ok, error, rejected).",
	}, []string{"result"})

	// IngestBreakerState gauges the circuit breaker state
	// (0 closed, 1 half-open, 2 open).
	IngestBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fundcompass",
		Subsystem: "ingest",
		Name:      "breaker_state",
		Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
	})

	// RefreshTotal counts snapshot refresh attempts by result.
	RefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fundcompass",
		Subsystem: "refresh",
		Name:      "runs_total",
		Help:      "Snapshot refresh runs by result (ok, error).",
	}, []string{"result"})

	// HTTPRequests counts API requests by route, method and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fundcompass",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status class.",
	}, []string{"route", "method", "status"})

	// HTTPDuration observes API request latency by route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fundcompass",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)
