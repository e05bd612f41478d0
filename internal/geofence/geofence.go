// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

// Package geofence classifies coordinates against a building rectangle and
// a buffer ring around it.
//
// All comparisons are inclusive on every edge. NaN coordinates compare false
// and are therefore always rejected.
package geofence

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/waypost/internal/config"
	"github.com/tomtom215/waypost/internal/models"
)

// Zone labels used in logs and metrics.
const (
	ZoneInside   = "inside"
	ZoneBuffer   = "buffer"
	ZoneRejected = "rejected"
)

// Bounds is a latitude/longitude rectangle in WGS84 degrees.
// Buffer is only meaningful on the bounds passed to New.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
	Buffer float64 `json:"buffer,omitempty"`
}

// Contains reports whether (lat, lng) lies in b, edges included.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lng >= b.MinLng && lng <= b.MaxLng
}

// BoundsFromConfig copies the configured geofence.
func BoundsFromConfig(cfg config.GeofenceConfig) Bounds {
	return Bounds{
		MinLat: cfg.MinLat,
		MaxLat: cfg.MaxLat,
		MinLng: cfg.MinLng,
		MaxLng: cfg.MaxLng,
		Buffer: cfg.Buffer,
	}
}

// Fence holds the exact and expanded rectangles. It is immutable and safe
// for concurrent use.
type Fence struct {
	exact    Bounds
	expanded Bounds
}

// New validates bounds and derives the expanded rectangle.
func New(bounds Bounds) (*Fence, error) {
	for _, v := range []float64{bounds.MinLat, bounds.MaxLat, bounds.MinLng, bounds.MaxLng, bounds.Buffer} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New("geofence bounds must be finite numbers")
		}
	}
	if bounds.MinLat > bounds.MaxLat {
		return nil, fmt.Errorf("geofence min_lat %f exceeds max_lat %f", bounds.MinLat, bounds.MaxLat)
	}
	if bounds.MinLng > bounds.MaxLng {
		return nil, fmt.Errorf("geofence min_lng %f exceeds max_lng %f", bounds.MinLng, bounds.MaxLng)
	}
	if bounds.Buffer < 0 {
		return nil, fmt.Errorf("geofence buffer %f is negative", bounds.Buffer)
	}

	exact := bounds
	exact.Buffer = 0
	return &Fence{
		exact: exact,
		expanded: Bounds{
			MinLat: bounds.MinLat - bounds.Buffer,
			MaxLat: bounds.MaxLat + bounds.Buffer,
			MinLng: bounds.MinLng - bounds.Buffer,
			MaxLng: bounds.MaxLng + bounds.Buffer,
		},
	}, nil
}

// Classify places (lat, lng) relative to the building.
func (f *Fence) Classify(lat, lng float64) models.Classification {
	if f.exact.Contains(lat, lng) {
		return models.Classification{InsideActual: true, Accept: true}
	}
	return models.Classification{Accept: f.expanded.Contains(lat, lng)}
}

// Exact returns the building rectangle.
func (f *Fence) Exact() Bounds { return f.exact }

// Expanded returns the building rectangle grown by the buffer on every side.
func (f *Fence) Expanded() Bounds { return f.expanded }

// Center returns the midpoint of the building rectangle.
func (f *Fence) Center() (lat, lng float64) {
	return (f.exact.MinLat + f.exact.MaxLat) / 2, (f.exact.MinLng + f.exact.MaxLng) / 2
}

// Zone names the classification.
func Zone(c models.Classification) string {
	switch {
	case c.InsideActual:
		return ZoneInside
	case c.Accept:
		return ZoneBuffer
	default:
		return ZoneRejected
	}
}
