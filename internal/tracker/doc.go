// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

// Package tracker is the client for the 365gps tracker web API.
//
// A fetch is two form POSTs on a fresh cookie session: a login with the
// device IMEI and password, then a marker list request. The marker body is
// decompressed, stripped of any UTF-8 byte order mark and decoded from the
// aaData array into models.LocationReport values.
//
// Failures are typed: *AuthError for a rejected login, *NetworkError for
// transport problems, non-2xx marker responses and an open circuit, and
// *DecodeError for bodies that cannot be decoded. Callers match them with
// errors.As.
package tracker
