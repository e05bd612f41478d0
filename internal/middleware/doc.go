// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - PrometheusMetrics: request count, latency and in-flight instrumentation
  - Compression: gzip for larger JSON payloads (klauspost/compress)

Both use the http.HandlerFunc form and are adapted to chi with the router's
chiMiddleware helper:

	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.With(chiMiddleware(middleware.Compression)).Get("/api/coords", h.Coords)

The endpoint label is the chi route pattern ("/api/coords"), never the raw
path, so unknown URLs cannot grow label cardinality.
*/
package middleware
