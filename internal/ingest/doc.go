// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

/*
Package ingest runs the poll, classify and persist loop.

Each cycle fetches the tracker's latest reports through a tracker.Fetcher,
classifies every report against the geofence, stores the accepted ones in a
single transaction and prunes the table down to the newest rows once it
grows past the configured threshold.

Scheduling:

Cycles are triggered at a fixed rate. The first cycle runs as soon as Start
is called and every following trigger is measured from the previous
trigger, not from its completion. Each trigger runs in its own goroutine so
a slow vendor response never delays the schedule; the insert and prune
section is serialised by the manager's write mutex.

Errors:

No cycle error is fatal. Failures are logged with their kind (see
ErrorKind), counted in Prometheus and reflected in LastCycle. Completion
callbacks only fire for cycles that committed.

Usage:

	m := ingest.NewManager(db, client, fence, &cfg.Ingest)
	m.AddOnCycleCompleted(func(r models.CycleResult) { cache.Clear() })
	if err := m.Start(ctx); err != nil {
	    return err
	}
	defer m.Stop()
*/
package ingest
