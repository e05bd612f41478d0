// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package ingest

import (
	"context"
	"errors"

	"github.com/tomtom215/waypost/internal/database"
	"github.com/tomtom215/waypost/internal/tracker"
)

// Error kinds used as log fields and metric labels.
const (
	KindAuth        = "auth"
	KindNetwork     = "network"
	KindTimeout     = "timeout"
	KindDecode      = "decode"
	KindPersistence = "persistence"
	KindUnknown     = "unknown"
)

// ErrorKind classifies a cycle error. It returns "" for nil.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	var authErr *tracker.AuthError
	var netErr *tracker.NetworkError
	var decodeErr *tracker.DecodeError
	var persistErr *database.PersistenceError

	switch {
	case errors.As(err, &authErr):
		return KindAuth
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	case errors.As(err, &decodeErr):
		return KindDecode
	case errors.As(err, &persistErr):
		return KindPersistence
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	default:
		return KindUnknown
	}
}
