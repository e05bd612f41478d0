// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package services

import (
	"context"
	"fmt"
)

// StartStopManager matches the ingest manager lifecycle. Start returns once
// the schedule is running; Stop blocks until in-flight cycles finish.
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// IngestService runs the ingest manager under supervision.
type IngestService struct {
	manager StartStopManager
	name    string
}

// NewIngestService creates the wrapper.
//
//	manager := ingest.NewManager(db, client, fence, &cfg.Ingest)
//	tree.AddIngestService(services.NewIngestService(manager))
func NewIngestService(manager StartStopManager) *IngestService {
	return &IngestService{
		manager: manager,
		name:    "ingest-manager",
	}
}

// Serve implements suture.Service. A Start failure is returned at once so the
// supervisor retries under its backoff policy.
func (s *IngestService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("ingest manager start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("ingest manager stop failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (s *IngestService) String() string {
	return s.name
}
