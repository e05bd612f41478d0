// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package models

import "time"

// CoordPoint is one element of the bare JSON array served by /api/coords.
//
// Signal is an absolute instant: a vendor wall clock of 12:00 at UTC+3 is
// served as 09:00Z. InActualBuilding is 1 or 0 rather than a boolean; the map
// page compares it numerically to choose the marker colour.
//
//	{
//	  "lat_google": 55.750182,
//	  "lng_google": 49.273466,
//	  "imei": "861261027896790",
//	  "speed": 0,
//	  "signal": "2026-10-19T09:00:00Z",
//	  "timestamp": "2026-10-19T09:00:03.512Z",
//	  "in_actual_building": 1
//	}
type CoordPoint struct {
	Lat              float64   `json:"lat_google"`
	Lng              float64   `json:"lng_google"`
	IMEI             string    `json:"imei"`
	Speed            float64   `json:"speed"`
	Signal           time.Time `json:"signal"`
	Timestamp        time.Time `json:"timestamp"`
	InActualBuilding int       `json:"in_actual_building"`
}

// CoordPointFrom converts a stored row.
func CoordPointFrom(p StoredPoint) CoordPoint {
	inside := 0
	if p.InActualBuilding {
		inside = 1
	}
	return CoordPoint{
		Lat:              p.Lat,
		Lng:              p.Lng,
		IMEI:             p.IMEI,
		Speed:            p.Speed,
		Signal:           p.Signal,
		Timestamp:        p.Timestamp,
		InActualBuilding: inside,
	}
}

// APIResponse is the envelope used by every endpoint except /api/coords.
//
// Status is "success" or "error"; Error is set only for "error".
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata accompanies every enveloped response.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError carries a machine-readable code such as DATABASE_ERROR.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the /api/health payload.
type HealthStatus struct {
	Status         string        `json:"status"`
	Version        string        `json:"version"`
	DatabaseOK     bool          `json:"database_connected"`
	StoredPoints   int64         `json:"stored_points"`
	IngestRunning  bool          `json:"ingest_running"`
	LastCycle      *CycleSummary `json:"last_cycle,omitempty"`
	LastSuccess    *time.Time    `json:"last_success,omitempty"`
	CircuitState   string        `json:"circuit_state,omitempty"`
	WebsocketPeers int           `json:"websocket_clients"`
	CoordsCache    CacheStatus   `json:"coords_cache"`
	Uptime         float64       `json:"uptime_seconds"`
}

// CacheStatus summarises the /api/coords payload cache.
type CacheStatus struct {
	Enabled   bool    `json:"enabled"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate_percent"`
}
