// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package geofence

import (
	"math"
	"testing"

	"github.com/tomtom215/waypost/internal/models"
)

var building = Bounds{
	MinLat: 55.750182,
	MaxLat: 55.750400,
	MinLng: 49.273466,
	MaxLng: 49.273876,
	Buffer: 0.0003,
}

func mustFence(t *testing.T) *Fence {
	t.Helper()
	f, err := New(building)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return f
}

func TestClassify(t *testing.T) {
	t.Parallel()
	f := mustFence(t)

	tests := []struct {
		name     string
		lat, lng float64
		want     models.Classification
		zone     string
	}{
		{"center", 55.750291, 49.273671, models.Classification{InsideActual: true, Accept: true}, ZoneInside},
		{"min corner", 55.750182, 49.273466, models.Classification{InsideActual: true, Accept: true}, ZoneInside},
		{"max corner", 55.750400, 49.273876, models.Classification{InsideActual: true, Accept: true}, ZoneInside},
		{"buffer north", 55.750500, 49.273671, models.Classification{Accept: true}, ZoneBuffer},
		{"buffer west", 55.750291, 49.273300, models.Classification{Accept: true}, ZoneBuffer},
		{"buffer corner", 55.750182 - 0.0002, 49.273466 - 0.0002, models.Classification{Accept: true}, ZoneBuffer},
		{"outside south", 55.749000, 49.273671, models.Classification{}, ZoneRejected},
		{"one degree away", 56.750182, 49.273466, models.Classification{}, ZoneRejected},
		{"lat inside lng outside", 55.750291, 49.280000, models.Classification{}, ZoneRejected},
		{"NaN", math.NaN(), 49.273671, models.Classification{}, ZoneRejected},
	}

	for _, tt := range tests {
		got := f.Classify(tt.lat, tt.lng)
		if got != tt.want {
			t.Errorf("%s: Classify(%v, %v) = %+v, want %+v", tt.name, tt.lat, tt.lng, got, tt.want)
		}
		if z := Zone(got); z != tt.zone {
			t.Errorf("%s: Zone = %q, want %q", tt.name, z, tt.zone)
		}
	}
}

func TestClassify_ExpandedEdgesInclusive(t *testing.T) {
	t.Parallel()
	f := mustFence(t)
	e := f.Expanded()

	edges := [][2]float64{
		{e.MinLat, e.MinLng},
		{e.MaxLat, e.MaxLng},
		{e.MinLat, e.MaxLng},
		{e.MaxLat, e.MinLng},
	}
	for _, p := range edges {
		c := f.Classify(p[0], p[1])
		if !c.Accept || c.InsideActual {
			t.Errorf("Classify(%v, %v) = %+v, want buffer", p[0], p[1], c)
		}
	}
}

func TestClassify_ZeroBuffer(t *testing.T) {
	t.Parallel()
	b := building
	b.Buffer = 0
	f, err := New(b)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c := f.Classify(55.750500, 49.273671); c.Accept {
		t.Errorf("zero buffer should reject points outside the building, got %+v", c)
	}
	if f.Expanded() != f.Exact() {
		t.Errorf("expanded %+v should equal exact %+v", f.Expanded(), f.Exact())
	}
}

func TestNew_Rejects(t *testing.T) {
	t.Parallel()

	tests := map[string]Bounds{
		"inverted lat":    {MinLat: 2, MaxLat: 1, MinLng: 0, MaxLng: 1},
		"inverted lng":    {MinLat: 0, MaxLat: 1, MinLng: 2, MaxLng: 1},
		"negative buffer": {MinLat: 0, MaxLat: 1, MinLng: 0, MaxLng: 1, Buffer: -0.1},
		"NaN bound":       {MinLat: math.NaN(), MaxLat: 1, MinLng: 0, MaxLng: 1},
		"infinite buffer": {MinLat: 0, MaxLat: 1, MinLng: 0, MaxLng: 1, Buffer: math.Inf(1)},
	}
	for name, b := range tests {
		if _, err := New(b); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestFenceAccessors(t *testing.T) {
	t.Parallel()
	f := mustFence(t)

	if f.Exact().Buffer != 0 {
		t.Error("Exact() should not carry the buffer")
	}
	if got := f.Expanded().MinLat; got != building.MinLat-building.Buffer {
		t.Errorf("Expanded().MinLat = %v", got)
	}
	lat, lng := f.Center()
	if !f.Exact().Contains(lat, lng) {
		t.Errorf("Center() (%v, %v) outside the building", lat, lng)
	}
}
