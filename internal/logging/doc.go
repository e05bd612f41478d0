// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

// Package logging provides the process-wide zerolog logger for Waypost.
//
// JSON output is the default; set LOG_FORMAT=console for development.
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("imei", logging.MaskIMEI(imei)).Msg("tracker configured")
//
// Ingestion cycles attach a correlation id to their context, and HTTP
// requests attach a request id. Ctx(ctx) picks both up:
//
//	logging.Ctx(ctx).Warn().Err(err).Msg("cycle failed")
//
// The SlogHandler bridge lets the suture supervisor log through zerolog.
package logging
