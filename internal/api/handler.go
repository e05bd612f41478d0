// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package api

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/waypost/internal/cache"
	"github.com/tomtom215/waypost/internal/config"
	"github.com/tomtom215/waypost/internal/geofence"
	"github.com/tomtom215/waypost/internal/logging"
	"github.com/tomtom215/waypost/internal/models"
	ws "github.com/tomtom215/waypost/internal/websocket"
)

// PointStore is the read side of the point store.
type PointStore interface {
	ListPoints(ctx context.Context) ([]models.StoredPoint, error)
	CountPoints(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// CycleRunner is the part of the ingest manager the API needs.
type CycleRunner interface {
	RunCycle(ctx context.Context) models.CycleResult
	LastCycle() models.CycleResult
	LastSuccess() time.Time
	Running() bool
}

// CircuitStater reports the vendor circuit breaker state.
type CircuitStater interface {
	State() string
}

const coordsCacheKey = "coords"

// Handler holds the dependencies shared by every endpoint.
type Handler struct {
	cfg       *config.Config
	store     PointStore
	ingest    CycleRunner
	fence     *geofence.Fence
	hub       *ws.Hub
	coords    *cache.Cache
	startTime time.Time
	version   string

	mu      sync.RWMutex
	circuit CircuitStater
}

// NewHandler creates a Handler. hub may be nil, in which case /ws answers 503
// and cycle completions are not broadcast.
func NewHandler(cfg *config.Config, store PointStore, ingest CycleRunner, fence *geofence.Fence, hub *ws.Hub, version string) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     store,
		ingest:    ingest,
		fence:     fence,
		hub:       hub,
		coords:    cache.New("coords", cfg.API.CoordsCacheTTL),
		startTime: time.Now(),
		version:   version,
	}
}

// SetCircuit exposes the breaker state on /api/health.
func (h *Handler) SetCircuit(c CircuitStater) {
	h.mu.Lock()
	h.circuit = c
	h.mu.Unlock()
}

func (h *Handler) circuitState() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.circuit == nil {
		return ""
	}
	return h.circuit.State()
}

// OnCycleCompleted is registered with the ingest manager. It runs only for
// committed cycles.
func (h *Handler) OnCycleCompleted(result models.CycleResult) {
	h.coords.Clear()
	if h.hub != nil {
		h.hub.BroadcastPointsUpdated(result)
	}
	logging.Debug().
		Str("cycle_id", result.CycleID).
		Int("accepted", result.Accepted).
		Msg("coords cache cleared")
}

// Close stops the cache cleanup goroutine.
func (h *Handler) Close() {
	h.coords.Close()
}
