// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package tracker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/waypost/internal/config"
	"github.com/tomtom215/waypost/internal/models"
)

type stubFetcher struct {
	calls atomic.Int32
	err   error
}

func (s *stubFetcher) FetchLatest(context.Context) ([]models.LocationReport, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []models.LocationReport{{IMEI: "1"}}, nil
}

func (s *stubFetcher) Ping(context.Context) error {
	s.calls.Add(1)
	return s.err
}

func TestCircuitBreakerClient_OpensAfterConsecutiveFailures(t *testing.T) {
	stub := &stubFetcher{err: &NetworkError{Op: "login", Err: errors.New("connection reset")}}
	cb := NewCircuitBreakerClient(stub, config.CircuitBreakerConfig{
		Enabled:             true,
		ConsecutiveFailures: 3,
		OpenTimeout:         time.Minute,
	})

	for i := 0; i < 3; i++ {
		if _, err := cb.FetchLatest(context.Background()); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	if cb.State() != "open" {
		t.Fatalf("State() = %s, want open", cb.State())
	}

	_, err := cb.FetchLatest(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) || netErr.Op != "circuit" {
		t.Fatalf("expected circuit NetworkError, got %v", err)
	}
	if stub.calls.Load() != 3 {
		t.Errorf("inner fetcher called %d times, want 3", stub.calls.Load())
	}
}

func TestCircuitBreakerClient_PassesThrough(t *testing.T) {
	stub := &stubFetcher{}
	cb := NewCircuitBreakerClient(stub, config.CircuitBreakerConfig{ConsecutiveFailures: 2, OpenTimeout: time.Minute})

	reports, err := cb.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest() error = %v", err)
	}
	if len(reports) != 1 {
		t.Errorf("expected 1 report, got %d", len(reports))
	}
	if err := cb.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if cb.State() != "closed" {
		t.Errorf("State() = %s, want closed", cb.State())
	}
}

func TestCircuitBreakerClient_CancellationDoesNotTrip(t *testing.T) {
	stub := &stubFetcher{err: &NetworkError{Op: "markers", Err: context.Canceled}}
	cb := NewCircuitBreakerClient(stub, config.CircuitBreakerConfig{ConsecutiveFailures: 1, OpenTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		if _, err := cb.FetchLatest(context.Background()); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	}
	if cb.State() != "closed" {
		t.Errorf("State() = %s, want closed", cb.State())
	}
}

func TestCircuitBreakerClient_HalfOpenRecovery(t *testing.T) {
	stub := &stubFetcher{err: errors.New("down")}
	cb := NewCircuitBreakerClient(stub, config.CircuitBreakerConfig{ConsecutiveFailures: 1, OpenTimeout: 50 * time.Millisecond})

	cb.FetchLatest(context.Background())
	if cb.State() != "open" {
		t.Fatalf("State() = %s, want open", cb.State())
	}

	time.Sleep(80 * time.Millisecond)
	stub.err = nil
	if _, err := cb.FetchLatest(context.Background()); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if cb.State() != "closed" {
		t.Errorf("State() = %s, want closed", cb.State())
	}
}
