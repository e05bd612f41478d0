// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

/*
Package main is the entry point for the Waypost server.

Waypost polls a 365gps tracker account, keeps only the locations that fall
inside a building's geofence (or the buffer ring around it), stores them in
DuckDB and draws the newest one on a Leaflet map.

# Application Architecture

	waypost (root supervisor)
	├── ingest-layer
	│   └── ingest-manager   fixed-rate poll, classify, persist, prune
	└── api-layer
	    ├── websocket-hub    points_updated pushes to open map pages
	    └── http-server      map page, /api/*, /ws, /metrics

Component initialization order:

 1. Configuration: koanf v2 (defaults, YAML, .env, environment)
 2. Logging: zerolog, JSON or console
 3. Point store: DuckDB, schema created on open
 4. Vendor client: cookie session per fetch, optional circuit breaker
 5. Geofence: exact rectangle plus buffer
 6. Ingest manager, websocket hub, API handler and chi router
 7. Supervisor tree: suture v4

# Shutdown

SIGINT or SIGTERM cancels the root context. The supervisor stops every
service: the ingest manager waits for in-flight cycles and the HTTP server
drains its connections. The store is checkpointed and closed last.

# Configuration

The vendor credentials are the only required settings:

	VENDOR_IMEI=861261027896790 VENDOR_PASSWORD=secret ./waypost

See internal/config for every key and its environment variable.
*/
package main
