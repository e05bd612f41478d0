// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

/*
Package models defines the data structures shared across Waypost.

Point Models:
  - LocationReport: one raw location as decoded from the vendor payload
  - StoredPoint: an accepted LocationReport as persisted in gps_points
  - Classification: the geofence verdict for one report

Ingestion Models:
  - CycleResult: counts, timing and error of one poll-filter-persist cycle
  - CycleSummary: the JSON view of a CycleResult

API Models:
  - CoordPoint: one element of the /api/coords array
  - APIResponse, APIError, Metadata: the envelope used by every other endpoint
  - HealthStatus: the /api/health payload

Models carry no behaviour beyond small conversions; geofence rules live in
internal/geofence and storage in internal/database.
*/
package models
