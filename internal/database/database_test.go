// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/waypost/internal/config"
	"github.com/tomtom215/waypost/internal/models"
)

// testDBSemaphore serialises DuckDB tests; concurrent CGO connections
// across tests can hang under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "256MB",
		Threads:   1,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func makePoints(n int, inside bool) []models.StoredPoint {
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	points := make([]models.StoredPoint, n)
	for i := range points {
		points[i] = models.StoredPoint{
			IMEI:             "861261027896790",
			Lat:              55.750182 + float64(i)*1e-6,
			Lng:              49.273466,
			Speed:            float64(i),
			Signal:           base.Add(time.Duration(i) * time.Second),
			Timestamp:        base.Add(time.Duration(i)*time.Second + 500*time.Millisecond),
			InActualBuilding: inside,
		}
	}
	return points
}

func TestNew_CreatesSchema(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	count, err := db.CountPoints(ctx)
	if err != nil {
		t.Fatalf("CountPoints() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountPoints() = %d, want 0", count)
	}
}

func TestNew_FileBackedReopen(t *testing.T) {
	testDBSemaphore <- struct{}{}
	defer func() { <-testDBSemaphore }()

	path := filepath.Join(t.TempDir(), "nested", "waypost.duckdb")
	cfg := &config.DatabaseConfig{Path: path, MaxMemory: "256MB", Threads: 1}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := db.InsertPoints(context.Background(), makePoints(3, true)); err != nil {
		t.Fatalf("InsertPoints() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file missing: %v", err)
	}

	db, err = New(cfg)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	points, err := db.ListPoints(context.Background())
	if err != nil {
		t.Fatalf("ListPoints() error = %v", err)
	}
	if len(points) != 3 {
		t.Errorf("expected 3 points after reopen, got %d", len(points))
	}
}

func TestInsertAndListPoints(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	in := makePoints(3, true)
	in[1].InActualBuilding = false
	in[2].Signal = in[2].Signal.In(time.FixedZone("UTC+3", 3*3600))
	if err := db.InsertPoints(ctx, in); err != nil {
		t.Fatalf("InsertPoints() error = %v", err)
	}

	out, err := db.ListPoints(ctx)
	if err != nil {
		t.Fatalf("ListPoints() error = %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 points, got %d", len(out))
	}

	for i := range out {
		if i > 0 && out[i].ID <= out[i-1].ID {
			t.Errorf("ids not ascending: %d then %d", out[i-1].ID, out[i].ID)
		}
		if out[i].Lat != in[i].Lat || out[i].IMEI != in[i].IMEI || out[i].Speed != in[i].Speed {
			t.Errorf("point %d mismatch: %+v vs %+v", i, out[i], in[i])
		}
		if !out[i].Signal.Equal(in[i].Signal) {
			t.Errorf("point %d signal = %v, want %v", i, out[i].Signal, in[i].Signal)
		}
		if !out[i].Timestamp.Equal(in[i].Timestamp) {
			t.Errorf("point %d timestamp = %v, want %v", i, out[i].Timestamp, in[i].Timestamp)
		}
		if out[i].InActualBuilding != in[i].InActualBuilding {
			t.Errorf("point %d in_actual_building = %v", i, out[i].InActualBuilding)
		}
	}
}

func TestInsertPoints_Empty(t *testing.T) {
	db := setupTestDB(t)
	if err := db.InsertPoints(context.Background(), nil); err != nil {
		t.Fatalf("InsertPoints(nil) error = %v", err)
	}
	points, err := db.ListPoints(context.Background())
	if err != nil {
		t.Fatalf("ListPoints() error = %v", err)
	}
	if points == nil || len(points) != 0 {
		t.Errorf("ListPoints() = %v, want empty slice", points)
	}
}

func TestInsertPoints_DuplicatesAppend(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	batch := makePoints(2, true)
	for i := 0; i < 2; i++ {
		if err := db.InsertPoints(ctx, batch); err != nil {
			t.Fatalf("InsertPoints() round %d error = %v", i, err)
		}
	}

	points, err := db.ListPoints(ctx)
	if err != nil {
		t.Fatalf("ListPoints() error = %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(points))
	}
	if points[0].Signal != points[2].Signal || points[0].ID == points[2].ID {
		t.Errorf("expected identical payload with new ids, got %+v and %+v", points[0], points[2])
	}
}

func TestInsertPoints_RollbackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	batch := makePoints(3, true)
	batch[2].IMEI = "1234567890123456789" // exceeds VARCHAR(15)

	err := db.InsertPoints(ctx, batch)
	var perr *PersistenceError
	if !errors.As(err, &perr) || perr.Op != "insert" {
		t.Fatalf("expected insert PersistenceError, got %v", err)
	}

	count, err := db.CountPoints(ctx)
	if err != nil {
		t.Fatalf("CountPoints() error = %v", err)
	}
	if count != 0 {
		t.Errorf("partial batch committed: %d rows", count)
	}
}

func TestPrunePoints_KeepsHighestIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		if err := db.InsertPoints(ctx, makePoints(10, i%2 == 0)); err != nil {
			t.Fatalf("InsertPoints() error = %v", err)
		}
	}
	before, err := db.ListPoints(ctx)
	if err != nil {
		t.Fatalf("ListPoints() error = %v", err)
	}

	removed, err := db.PrunePoints(ctx, 50)
	if err != nil {
		t.Fatalf("PrunePoints() error = %v", err)
	}
	if removed != 10 {
		t.Errorf("removed = %d, want 10", removed)
	}

	after, err := db.ListPoints(ctx)
	if err != nil {
		t.Fatalf("ListPoints() error = %v", err)
	}
	if len(after) != 50 {
		t.Fatalf("expected 50 rows, got %d", len(after))
	}
	for i, p := range after {
		if want := before[10+i].ID; p.ID != want {
			t.Fatalf("row %d id = %d, want %d", i, p.ID, want)
		}
	}
}

func TestPrunePoints_EdgeCases(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.InsertPoints(ctx, makePoints(5, true)); err != nil {
		t.Fatalf("InsertPoints() error = %v", err)
	}

	removed, err := db.PrunePoints(ctx, 10)
	if err != nil || removed != 0 {
		t.Fatalf("PrunePoints(10) = %d, %v; want 0, nil", removed, err)
	}

	removed, err = db.PrunePoints(ctx, 0)
	if err != nil || removed != 5 {
		t.Fatalf("PrunePoints(0) = %d, %v; want 5, nil", removed, err)
	}

	var perr *PersistenceError
	if _, err := db.PrunePoints(ctx, -1); !errors.As(err, &perr) {
		t.Errorf("expected PersistenceError for negative keep, got %v", err)
	}

	// The sequence keeps counting after a full prune.
	if err := db.InsertPoints(ctx, makePoints(1, true)); err != nil {
		t.Fatalf("InsertPoints() error = %v", err)
	}
	points, _ := db.ListPoints(ctx)
	if len(points) != 1 || points[0].ID <= 5 {
		t.Errorf("expected one row with id > 5, got %+v", points)
	}
}

func TestOperationsAfterClose(t *testing.T) {
	db := setupTestDB(t)
	db.Close()

	ctx := context.Background()
	var perr *PersistenceError
	if _, err := db.CountPoints(ctx); !errors.As(err, &perr) || perr.Op != "count" {
		t.Errorf("CountPoints after close: %v", err)
	}
	if _, err := db.ListPoints(ctx); !errors.As(err, &perr) || perr.Op != "list" {
		t.Errorf("ListPoints after close: %v", err)
	}
	if err := db.Ping(ctx); err == nil {
		t.Error("Ping after close should fail")
	}
}
