// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/waypost/internal/config"
	"github.com/tomtom215/waypost/internal/logging"
	"github.com/tomtom215/waypost/internal/models"
	"github.com/tomtom215/waypost/internal/tracker"
)

// Store is the subset of the point store used by a cycle.
type Store interface {
	InsertPoints(ctx context.Context, points []models.StoredPoint) error
	PrunePoints(ctx context.Context, keep int) (int64, error)
	CountPoints(ctx context.Context) (int64, error)
}

// Classifier places a coordinate relative to the building.
type Classifier interface {
	Classify(lat, lng float64) models.Classification
}

// Manager schedules ingestion cycles.
type Manager struct {
	store  Store
	client tracker.Fetcher
	fence  Classifier
	cfg    *config.IngestConfig

	mu          sync.RWMutex // protects running, stopChan, lastCycle, lastSuccess, callbacks
	running     bool
	stopChan    chan struct{}
	lastCycle   models.CycleResult
	lastSuccess time.Time
	callbacks   []func(models.CycleResult)

	writeMu sync.Mutex // serialises insert and prune across overlapping cycles
	wg      sync.WaitGroup
	now     func() time.Time
}

// NewManager creates a manager. Nothing runs until Start.
func NewManager(store Store, client tracker.Fetcher, fence Classifier, cfg *config.IngestConfig) *Manager {
	logging.Info().
		Dur("interval", cfg.Interval).
		Dur("cycle_timeout", cfg.CycleTimeout).
		Int("retry_attempts", cfg.RetryAttempts).
		Bool("prune", cfg.Prune.Enabled).
		Int("prune_threshold", cfg.Prune.Threshold).
		Int("prune_keep", cfg.Prune.Keep).
		Msg("Ingest manager config loaded")

	return &Manager{
		store:  store,
		client: client,
		fence:  fence,
		cfg:    cfg,
		now:    time.Now,
	}
}

// AddOnCycleCompleted registers fn to run after every committed cycle.
// Callbacks run synchronously on the cycle goroutine, in registration order.
func (m *Manager) AddOnCycleCompleted(fn func(models.CycleResult)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// Start runs the first cycle immediately and then one per interval tick
// until ctx is cancelled or Stop is called.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("ingest manager is already running")
	}
	if m.cfg.Interval <= 0 {
		m.mu.Unlock()
		return fmt.Errorf("invalid ingest interval %v", m.cfg.Interval)
	}
	m.running = true
	m.stopChan = make(chan struct{})
	stop := m.stopChan
	m.mu.Unlock()

	logging.Info().Dur("interval", m.cfg.Interval).Msg("Starting ingest manager...")

	// Added before the goroutine starts so Stop never waits on a zero counter.
	m.wg.Add(1)
	go m.scheduleLoop(ctx, stop)

	return nil
}

// Stop halts the schedule and waits for in-flight cycles to finish.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return errors.New("ingest manager is not running")
	}
	m.running = false
	close(m.stopChan)
	m.mu.Unlock()

	logging.Info().Msg("Stopping ingest manager...")
	m.wg.Wait()
	logging.Info().Msg("Ingest manager stopped")
	return nil
}

// Running reports whether the schedule is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastCycle returns the most recently finished cycle. The zero value means
// no cycle has finished yet.
func (m *Manager) LastCycle() models.CycleResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastCycle
}

// LastSuccess returns the start time of the newest committed cycle.
func (m *Manager) LastSuccess() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSuccess
}

func (m *Manager) scheduleLoop(ctx context.Context, stop <-chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	m.trigger(ctx)
	for {
		select {
		case <-ticker.C:
			m.trigger(ctx)
		case <-stop:
			return
		case <-ctx.Done():
			logging.Info().Msg("Ingest schedule stopped: context cancelled")
			return
		}
	}
}

// trigger starts one cycle without waiting for it. The schedule loop holds
// a wg slot, so Add here never races with Wait.
func (m *Manager) trigger(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.RunCycle(ctx)
	}()
}

func (m *Manager) record(ctx context.Context, result models.CycleResult) {
	m.mu.Lock()
	m.lastCycle = result
	if result.Committed() && result.StartedAt.After(m.lastSuccess) {
		m.lastSuccess = result.StartedAt
	}
	callbacks := make([]func(models.CycleResult), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	if !result.Committed() {
		return
	}
	for _, fn := range callbacks {
		m.runCallback(ctx, fn, result)
	}
}

func (m *Manager) runCallback(ctx context.Context, fn func(models.CycleResult), result models.CycleResult) {
	defer func() {
		if r := recover(); r != nil {
			logging.Ctx(ctx).Error().Interface("panic", r).Msg("Cycle completion callback panicked")
		}
	}()
	fn(result)
}
