// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS gps_points_id_seq START 1;`,
		`CREATE TABLE IF NOT EXISTS gps_points (
			id BIGINT PRIMARY KEY DEFAULT nextval('gps_points_id_seq'),
			lat_google DOUBLE NOT NULL,
			lng_google DOUBLE NOT NULL,
			imei VARCHAR(15) NOT NULL,
			speed DOUBLE,
			signal_at TIMESTAMP NOT NULL,
			recorded_at TIMESTAMP NOT NULL,
			in_actual_building BOOLEAN NOT NULL DEFAULT false
		);`,
		`CREATE INDEX IF NOT EXISTS idx_gps_points_imei ON gps_points(imei);`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}
