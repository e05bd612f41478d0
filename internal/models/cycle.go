// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package models

import "time"

// CycleResult describes one ingestion cycle.
//
// Inside + Buffer + Rejected == Fetched. Accepted == Inside + Buffer when the
// cycle committed, and 0 when it failed before or during the insert.
type CycleResult struct {
	CycleID   string
	StartedAt time.Time
	Duration  time.Duration
	Fetched   int
	Inside    int
	Buffer    int
	Rejected  int
	Accepted  int
	Pruned    int64
	Err       error
}

// Committed reports whether the cycle finished without error.
func (r CycleResult) Committed() bool {
	return r.Err == nil && !r.StartedAt.IsZero()
}

// CycleSummary is the JSON form of a CycleResult.
type CycleSummary struct {
	CycleID    string    `json:"cycle_id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Fetched    int       `json:"fetched"`
	Inside     int       `json:"inside"`
	Buffer     int       `json:"buffer"`
	Rejected   int       `json:"rejected"`
	Accepted   int       `json:"accepted"`
	Pruned     int64     `json:"pruned"`
	Error      string    `json:"error,omitempty"`
	ErrorKind  string    `json:"error_kind,omitempty"`
}

// Summary converts r for JSON output. kind is the classified error kind and
// is ignored when r has no error.
func (r CycleResult) Summary(kind string) CycleSummary {
	s := CycleSummary{
		CycleID:    r.CycleID,
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
		Fetched:    r.Fetched,
		Inside:     r.Inside,
		Buffer:     r.Buffer,
		Rejected:   r.Rejected,
		Accepted:   r.Accepted,
		Pruned:     r.Pruned,
	}
	if r.Err != nil {
		s.Error = r.Err.Error()
		s.ErrorKind = kind
	}
	return s
}
