// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

/*
Package api serves the map page and the HTTP API on top of a chi router.

# Endpoints

	GET  /                 embedded map page
	GET  /static/*         embedded map assets
	GET  /api/coords       every stored point as a bare JSON array
	GET  /api/geofence     exact and expanded rectangles for the map overlay
	GET  /api/health       store, ingest and websocket status
	POST /api/ingest/run   run one ingestion cycle synchronously
	GET  /ws               websocket for points_updated pushes
	GET  /metrics          Prometheus exposition

/api/coords is the only endpoint that answers without the APIResponse
envelope; the map page reads the array directly. Its encoded payload is held
in a short-lived cache that OnCycleCompleted clears after every committed
cycle, so a reader never waits longer than one cycle to see new rows.

# Middleware

Global: request id with logging context, chi RealIP, chi Recoverer and
go-chi/cors. The /api group adds Prometheus instrumentation, go-chi/httprate
per-IP limiting and security headers. The manual trigger carries a stricter
limit of its own.
*/
package api
