// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/waypost/internal/logging"
	"github.com/tomtom215/waypost/internal/metrics"
	"github.com/tomtom215/waypost/internal/models"
)

// InsertPoints appends points in one transaction. IDs come from the
// sequence; any ID set on the input is ignored. An empty slice is a no-op.
func (db *DB) InsertPoints(ctx context.Context, points []models.StoredPoint) (err error) {
	if len(points) == 0 {
		return nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("INSERT", pointsTable, time.Since(start), err)
		if err != nil {
			err = &PersistenceError{Op: "insert", Err: err}
		}
	}()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO gps_points (
		lat_google, lng_google, imei, speed, signal_at, recorded_at, in_actual_building
	) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Msg("Failed to close prepared statement")
		}
	}()

	for i := range points {
		p := &points[i]
		if _, err = stmt.ExecContext(ctx,
			p.Lat, p.Lng, p.IMEI, p.Speed, p.Signal.UTC(), p.Timestamp.UTC(), p.InActualBuilding,
		); err != nil {
			return fmt.Errorf("failed to insert point %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logging.Debug().Int("inserted", len(points)).Msg("Point batch committed")
	return nil
}

// PrunePoints deletes every row except the keep rows with the highest ids,
// in one transaction, and returns the number of rows removed.
func (db *DB) PrunePoints(ctx context.Context, keep int) (removed int64, err error) {
	if keep < 0 {
		return 0, &PersistenceError{Op: "prune", Err: fmt.Errorf("keep must be >= 0, got %d", keep)}
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("DELETE", pointsTable, time.Since(start), err)
		if err != nil {
			err = &PersistenceError{Op: "prune", Err: err}
		}
	}()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	// keep is an int, so formatting it into the statement is safe.
	query := fmt.Sprintf(`DELETE FROM gps_points
		WHERE id NOT IN (SELECT id FROM gps_points ORDER BY id DESC LIMIT %d)`, keep)

	res, err := tx.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete points: %w", err)
	}
	removed, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return removed, nil
}

// CountPoints returns the number of stored rows.
func (db *DB) CountPoints(ctx context.Context) (count int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	err = db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM gps_points").Scan(&count)
	metrics.RecordDBQuery("COUNT", pointsTable, time.Since(start), err)
	if err != nil {
		return 0, &PersistenceError{Op: "count", Err: err}
	}
	return count, nil
}

// ListPoints returns every row ordered by id ascending; the last element is
// the newest.
func (db *DB) ListPoints(ctx context.Context) (points []models.StoredPoint, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("SELECT", pointsTable, time.Since(start), err)
		if err != nil {
			err = &PersistenceError{Op: "list", Err: err}
		}
	}()

	rows, err := db.conn.QueryContext(ctx, `SELECT
		id, lat_google, lng_google, imei, speed, signal_at, recorded_at, in_actual_building
	FROM gps_points
	ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}
	defer rows.Close()

	points = make([]models.StoredPoint, 0)
	for rows.Next() {
		var (
			p     models.StoredPoint
			speed sql.NullFloat64
		)
		if err = rows.Scan(&p.ID, &p.Lat, &p.Lng, &p.IMEI, &speed, &p.Signal, &p.Timestamp, &p.InActualBuilding); err != nil {
			return nil, fmt.Errorf("failed to scan point: %w", err)
		}
		p.Speed = speed.Float64
		points = append(points, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate points: %w", err)
	}
	return points, nil
}
