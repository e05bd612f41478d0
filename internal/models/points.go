// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package models

import "time"

// LocationReport is one location as reported by the vendor.
//
// Signal is parsed from the vendor's local wall-clock string and carries no
// zone conversion; it is stored exactly as given.
type LocationReport struct {
	IMEI   string    `json:"imei"`
	Lat    float64   `json:"lat_google"`
	Lng    float64   `json:"lng_google"`
	Speed  float64   `json:"speed"`
	Signal time.Time `json:"signal"`
}

// StoredPoint is a persisted row of gps_points.
//
// Every StoredPoint lies inside the exact building or its buffer; rejected
// reports never reach storage. Rows are immutable and only removed by pruning.
type StoredPoint struct {
	ID               int64     `json:"id"`
	IMEI             string    `json:"imei"`
	Lat              float64   `json:"lat_google"`
	Lng              float64   `json:"lng_google"`
	Speed            float64   `json:"speed"`
	Signal           time.Time `json:"signal"`
	Timestamp        time.Time `json:"timestamp"`
	InActualBuilding bool      `json:"in_actual_building"`
}

// NewStoredPoint builds the row for an accepted report. ID is left zero and
// assigned by the store's sequence.
func NewStoredPoint(r LocationReport, insideActual bool, ingestedAt time.Time) StoredPoint {
	return StoredPoint{
		IMEI:             r.IMEI,
		Lat:              r.Lat,
		Lng:              r.Lng,
		Speed:            r.Speed,
		Signal:           r.Signal,
		Timestamp:        ingestedAt,
		InActualBuilding: insideActual,
	}
}

// Classification is the geofence verdict for one coordinate.
// InsideActual implies Accept.
type Classification struct {
	InsideActual bool
	Accept       bool
}
