// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/waypost/internal/config"
	"github.com/tomtom215/waypost/internal/geofence"
	"github.com/tomtom215/waypost/internal/ingest"
	"github.com/tomtom215/waypost/internal/models"
)

var _ suture.Service = (*IngestService)(nil)

type mockManager struct {
	startErr error
	stopErr  error
	starts   atomic.Int32
	stops    atomic.Int32
}

func (m *mockManager) Start(context.Context) error {
	m.starts.Add(1)
	return m.startErr
}

func (m *mockManager) Stop() error {
	m.stops.Add(1)
	return m.stopErr
}

func TestIngestService_Serve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		startErr  error
		stopErr   error
		wantStops int32
		wantErr   func(error) bool
	}{
		{
			name:      "stops on cancellation",
			wantStops: 1,
			wantErr:   func(err error) bool { return errors.Is(err, context.Canceled) },
		},
		{
			name:     "start failure returned immediately",
			startErr: errors.New("invalid ingest interval"),
			wantErr:  func(err error) bool { return err != nil && !errors.Is(err, context.Canceled) },
		},
		{
			name:      "stop failure returned",
			stopErr:   errors.New("not running"),
			wantStops: 1,
			wantErr:   func(err error) bool { return err != nil && !errors.Is(err, context.Canceled) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := &mockManager{startErr: tt.startErr, stopErr: tt.stopErr}
			svc := NewIngestService(m)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := svc.Serve(ctx)
			if !tt.wantErr(err) {
				t.Errorf("unexpected error %v", err)
			}
			if m.starts.Load() != 1 || m.stops.Load() != tt.wantStops {
				t.Errorf("starts=%d stops=%d", m.starts.Load(), m.stops.Load())
			}
		})
	}
}

type countingFetcher struct {
	calls atomic.Int32
}

func (f *countingFetcher) FetchLatest(context.Context) ([]models.LocationReport, error) {
	f.calls.Add(1)
	return nil, nil
}

func (f *countingFetcher) Ping(context.Context) error { return nil }

type nopStore struct{}

func (nopStore) InsertPoints(context.Context, []models.StoredPoint) error { return nil }
func (nopStore) PrunePoints(context.Context, int) (int64, error)          { return 0, nil }
func (nopStore) CountPoints(context.Context) (int64, error)               { return 0, nil }

func TestIngestService_RealManagerUnderSupervisor(t *testing.T) {
	t.Parallel()

	fence, err := geofence.New(geofence.Bounds{MinLat: 1, MaxLat: 2, MinLng: 1, MaxLng: 2})
	if err != nil {
		t.Fatalf("geofence.New: %v", err)
	}
	fetcher := &countingFetcher{}
	manager := ingest.NewManager(nopStore{}, fetcher, fence, &config.IngestConfig{
		Interval:      20 * time.Millisecond,
		CycleTimeout:  time.Second,
		RetryAttempts: 1,
	})

	sup := suture.New("test-sup", suture.Spec{Timeout: 2 * time.Second})
	sup.Add(NewIngestService(manager))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for fetcher.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if fetcher.calls.Load() < 3 {
		t.Fatalf("expected at least 3 cycles, got %d", fetcher.calls.Load())
	}

	cancel()
	<-errCh

	if manager.Running() {
		t.Error("manager still running after supervisor stopped")
	}
}
