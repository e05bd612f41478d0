// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package tracker

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrLoginRejected is wrapped by every AuthError.
var ErrLoginRejected = errors.New("vendor login rejected")

// AuthError means the vendor answered the login POST with a non-2xx status.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%v: status %d", ErrLoginRejected, e.Status)
}

func (e *AuthError) Unwrap() error { return ErrLoginRejected }

// NetworkError covers transport failures, non-2xx marker responses and an
// open circuit breaker. Op is "login", "markers", "session" or "circuit".
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("vendor %s request failed with status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("vendor %s request failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline or I/O timeout.
func (e *NetworkError) Timeout() bool {
	if e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// DecodeError means the marker body could not be turned into reports.
//
// Index is the offending record in aaData, or -1 when the payload as a whole
// is unreadable. Preview holds up to the first 200 characters of the body.
type DecodeError struct {
	Index   int
	Field   string
	Preview string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("decode marker %d field %q: %v", e.Index, e.Field, e.Err)
	}
	return fmt.Sprintf("decode marker payload: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
