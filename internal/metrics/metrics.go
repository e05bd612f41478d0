// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion Metrics
	IngestCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_cycles_total",
			Help: "Total number of finished ingestion cycles",
		},
		[]string{"result"}, // "success", "failure"
	)

	IngestCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_cycle_duration_seconds",
			Help:    "Duration of ingestion cycles in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	IngestCycleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_cycle_errors_total",
			Help: "Total number of failed ingestion cycles by error kind",
		},
		[]string{"kind"},
	)

	IngestCyclesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_cycles_in_flight",
			Help: "Number of ingestion cycles currently running",
		},
	)

	IngestPoints = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_points_total",
			Help: "Total number of classified location reports by geofence zone",
		},
		[]string{"zone"}, // "inside", "buffer", "rejected"
	)

	IngestPointsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_points_pruned_total",
			Help: "Total number of stored points removed by pruning",
		},
	)

	IngestLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_last_success_timestamp",
			Help: "Unix timestamp of the last committed ingestion cycle",
		},
	)

	StoredPoints = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stored_points",
			Help: "Number of rows in gps_points after the last commit",
		},
	)

	// Vendor Metrics
	VendorRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendor_requests_total",
			Help: "Total number of requests sent to the tracker vendor",
		},
		[]string{"op", "status"}, // op: "login", "markers"; status: HTTP code or "error"
	)

	VendorRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vendor_request_duration_seconds",
			Help:    "Duration of tracker vendor requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limited API requests",
		},
		[]string{"endpoint"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)
)

// RecordCycle records a finished ingestion cycle. kind is ignored on success.
func RecordCycle(duration time.Duration, err error, kind string) {
	IngestCycleDuration.Observe(duration.Seconds())
	if err != nil {
		IngestCycles.WithLabelValues("failure").Inc()
		IngestCycleErrors.WithLabelValues(kind).Inc()
		return
	}
	IngestCycles.WithLabelValues("success").Inc()
	IngestLastSuccess.SetToCurrentTime()
}

// RecordZones records the classification counts of one cycle.
func RecordZones(inside, buffer, rejected int) {
	IngestPoints.WithLabelValues("inside").Add(float64(inside))
	IngestPoints.WithLabelValues("buffer").Add(float64(buffer))
	IngestPoints.WithLabelValues("rejected").Add(float64(rejected))
}

// RecordPrune records rows removed by a prune and the remaining row count.
func RecordPrune(removed, remaining int64) {
	IngestPointsPruned.Add(float64(removed))
	StoredPoints.Set(float64(remaining))
}

// TrackCycleInFlight adjusts the in-flight gauge.
func TrackCycleInFlight(inc bool) {
	if inc {
		IngestCyclesInFlight.Inc()
	} else {
		IngestCyclesInFlight.Dec()
	}
}

// RecordVendorRequest records one vendor HTTP round trip. status is the
// HTTP status code, or "error" when no response was received.
func RecordVendorRequest(op, status string, duration time.Duration) {
	VendorRequests.WithLabelValues(op, status).Inc()
	VendorRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordDBQuery records query latency and, on failure, a coarse error type.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, dbErrorType(err)).Inc()
	}
}

func dbErrorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "query_error"
	}
}

// RecordAPIRequest records API request metrics.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup records a hit or miss for cacheType.
func RecordCacheLookup(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
	} else {
		CacheMisses.WithLabelValues(cacheType).Inc()
	}
}
