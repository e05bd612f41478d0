// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package models

import (
	"errors"
	"testing"
	"time"
)

func TestNewStoredPoint(t *testing.T) {
	t.Parallel()

	signal := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	now := signal.Add(3 * time.Second)
	r := LocationReport{IMEI: "861261027896790", Lat: 55.75, Lng: 49.27, Speed: 4.5, Signal: signal}

	p := NewStoredPoint(r, true, now)
	if p.ID != 0 {
		t.Errorf("ID = %d, want 0 before insert", p.ID)
	}
	if p.IMEI != r.IMEI || p.Lat != r.Lat || p.Lng != r.Lng || p.Speed != r.Speed {
		t.Errorf("fields not copied: %+v", p)
	}
	if !p.Signal.Equal(signal) || !p.Timestamp.Equal(now) {
		t.Errorf("times not copied: %+v", p)
	}
	if !p.InActualBuilding {
		t.Error("InActualBuilding should be true")
	}
}

func TestCoordPointFrom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		inside bool
		want   int
	}{
		{true, 1},
		{false, 0},
	}
	for _, tt := range tests {
		got := CoordPointFrom(StoredPoint{IMEI: "1", InActualBuilding: tt.inside})
		if got.InActualBuilding != tt.want {
			t.Errorf("InActualBuilding(%v) = %d, want %d", tt.inside, got.InActualBuilding, tt.want)
		}
	}
}

func TestCycleResultSummary(t *testing.T) {
	t.Parallel()

	ok := CycleResult{CycleID: "abcd1234", StartedAt: time.Now(), Duration: 1500 * time.Millisecond, Fetched: 3, Inside: 1, Buffer: 1, Rejected: 1, Accepted: 2}
	if !ok.Committed() {
		t.Error("expected committed")
	}
	s := ok.Summary("unknown")
	if s.DurationMS != 1500 || s.Accepted != 2 || s.Error != "" || s.ErrorKind != "" {
		t.Errorf("unexpected summary: %+v", s)
	}

	failed := CycleResult{CycleID: "x", StartedAt: time.Now(), Err: errors.New("boom")}
	if failed.Committed() {
		t.Error("failed cycle should not be committed")
	}
	s = failed.Summary("network")
	if s.Error != "boom" || s.ErrorKind != "network" {
		t.Errorf("unexpected summary: %+v", s)
	}

	if (CycleResult{}).Committed() {
		t.Error("zero result should not be committed")
	}
}
