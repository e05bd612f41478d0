// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

/*
Package cache holds encoded API payloads for a short TTL.

The coordinates endpoint reads the whole point table on every request while
the table only changes once per ingestion cycle. The cache keeps the encoded
response for api.coords_cache_ttl and is cleared by the ingest manager after
every committed cycle, so clients never see data older than one cycle.

Concurrent misses for the same key share a single load through
golang.org/x/sync/singleflight. A Clear that races with an in-flight load
wins: the loaded value is returned to its callers but not stored.

Usage:

	c := cache.New("coords", 5*time.Second)
	defer c.Close()

	body, cached, err := c.GetOrLoad("coords", func() ([]byte, error) {
	    return encodeCoords(ctx)
	})

A TTL of zero disables storage; GetOrLoad still collapses concurrent loads.
*/
package cache
