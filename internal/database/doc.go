// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

/*
Package database is the DuckDB point store.

One table, gps_points, holds every accepted location report:

	id                  BIGINT PRIMARY KEY DEFAULT nextval('gps_points_id_seq')
	lat_google          DOUBLE NOT NULL
	lng_google          DOUBLE NOT NULL
	imei                VARCHAR(15) NOT NULL
	speed               DOUBLE
	signal_at           TIMESTAMP NOT NULL   -- vendor wall clock, stored as given
	recorded_at         TIMESTAMP NOT NULL   -- ingestion time, UTC
	in_actual_building  BOOLEAN NOT NULL DEFAULT false

Writes are batched: InsertPoints and PrunePoints each run in a single
transaction and roll back on any error, surfacing a *PersistenceError.
Readers rely on DuckDB MVCC and only ever see committed rows.

The store does not serialise writers itself; the ingestion manager holds a
write mutex around insert and prune.
*/
package database
