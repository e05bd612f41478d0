// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

/*
Package metrics defines the Prometheus collectors for Waypost.

All collectors are registered on the default registry through promauto and
exposed by the API at /metrics.

# Available Metrics

Ingestion:
  - ingest_cycles_total{result}: finished cycles, result is success or failure
  - ingest_cycle_duration_seconds: cycle latency (histogram)
  - ingest_cycle_errors_total{kind}: failed cycles by error kind
    (auth, network, timeout, decode, persistence, unknown)
  - ingest_cycles_in_flight: cycles currently running (gauge)
  - ingest_points_total{zone}: classified reports by zone (inside, buffer, rejected)
  - ingest_points_pruned_total: rows removed by pruning
  - ingest_last_success_timestamp: unix time of the last committed cycle
  - stored_points: rows in gps_points after the last commit

Vendor:
  - vendor_requests_total{op, status}
  - vendor_request_duration_seconds{op}

Circuit breaker:
  - circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total{name, result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name, from_state, to_state}

Store, API, cache and websocket:
  - duckdb_query_duration_seconds{operation, table}
  - duckdb_query_errors_total{operation, table, error_type}
  - api_requests_total{method, endpoint, status}
  - api_request_duration_seconds{method, endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}
  - cache_hits_total{cache_type}, cache_misses_total{cache_type}
  - websocket_connections, websocket_messages_sent_total, websocket_errors_total{error_type}

Example PromQL:

	# share of points landing in the buffer ring
	sum(rate(ingest_points_total{zone="buffer"}[15m])) / sum(rate(ingest_points_total{zone!="rejected"}[15m]))

	# vendor failures by kind
	sum by (kind) (rate(ingest_cycle_errors_total[5m]))

Label values are fixed sets; no label carries an IMEI, coordinate or raw
error message.
*/
package metrics
