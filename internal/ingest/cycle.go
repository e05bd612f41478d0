// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/waypost/internal/geofence"
	"github.com/tomtom215/waypost/internal/logging"
	"github.com/tomtom215/waypost/internal/metrics"
	"github.com/tomtom215/waypost/internal/models"
	"github.com/tomtom215/waypost/internal/tracker"
)

// RunCycle fetches, classifies and stores one batch synchronously.
//
// The cycle runs under ingest.cycle_timeout and carries a fresh
// correlation id, which is also the returned CycleID.
func (m *Manager) RunCycle(ctx context.Context) models.CycleResult {
	cycleID := logging.GenerateCorrelationID()
	ctx = logging.ContextWithCorrelationID(ctx, cycleID)
	ctx, cancel := context.WithTimeout(ctx, m.cfg.CycleTimeout)
	defer cancel()

	metrics.TrackCycleInFlight(true)
	defer metrics.TrackCycleInFlight(false)

	result := models.CycleResult{CycleID: cycleID, StartedAt: m.now()}
	start := time.Now()
	result.Err = m.runCycle(ctx, &result)
	result.Duration = time.Since(start)

	kind := ErrorKind(result.Err)
	metrics.RecordCycle(result.Duration, result.Err, kind)
	m.logResult(ctx, result, kind)
	m.record(ctx, result)

	return result
}

func (m *Manager) runCycle(ctx context.Context, result *models.CycleResult) error {
	reports, err := m.fetch(ctx)
	if err != nil {
		return err
	}
	result.Fetched = len(reports)

	ingestedAt := m.now().UTC()
	points := make([]models.StoredPoint, 0, len(reports))
	for _, r := range reports {
		c := m.fence.Classify(r.Lat, r.Lng)
		switch geofence.Zone(c) {
		case geofence.ZoneInside:
			result.Inside++
		case geofence.ZoneBuffer:
			result.Buffer++
		default:
			result.Rejected++
			logging.Ctx(ctx).Debug().
				Float64("lat", r.Lat).
				Float64("lng", r.Lng).
				Msg("Report outside expanded geofence")
			continue
		}
		points = append(points, models.NewStoredPoint(r, c.InsideActual, ingestedAt))
	}
	metrics.RecordZones(result.Inside, result.Buffer, result.Rejected)

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if len(points) > 0 {
		if err := m.store.InsertPoints(ctx, points); err != nil {
			return err
		}
	}
	result.Accepted = len(points)

	if m.cfg.Prune.Enabled {
		result.Pruned = m.prune(ctx)
	}
	return nil
}

// fetch calls the vendor, retrying network failures with exponential backoff.
func (m *Manager) fetch(ctx context.Context) ([]models.LocationReport, error) {
	var reports []models.LocationReport
	err := m.retryWithBackoff(ctx, func() error {
		var err error
		reports, err = m.client.FetchLatest(ctx)
		return err
	})
	return reports, err
}

// retryWithBackoff runs fn up to RetryAttempts times. Only network errors are
// retried; the delay doubles per attempt and waits end early on cancellation.
func (m *Manager) retryWithBackoff(ctx context.Context, fn func() error) error {
	attempts := max(m.cfg.RetryAttempts, 1)
	delay := m.cfg.RetryDelay

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			logging.Ctx(ctx).Warn().
				Err(err).
				Int("attempt", attempt+1).
				Int("max_attempts", attempts).
				Dur("delay", delay).
				Msg("Retrying vendor fetch")

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry aborted after %d attempts: %w", attempt, err)
			}
			delay *= 2
		}

		err = fn()
		if err == nil || !retryable(err) {
			return err
		}
	}

	if attempts > 1 {
		return fmt.Errorf("max retry attempts reached: %w", err)
	}
	return err
}

func retryable(err error) bool {
	var netErr *tracker.NetworkError
	return errors.As(err, &netErr)
}

// prune trims the table once it reaches the threshold. Failures are logged
// and left for the next cycle; the batch is already committed.
func (m *Manager) prune(ctx context.Context) int64 {
	count, err := m.store.CountPoints(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("kind", ErrorKind(err)).Msg("Failed to count stored points")
		return 0
	}
	if count < int64(m.cfg.Prune.Threshold) {
		metrics.StoredPoints.Set(float64(count))
		return 0
	}

	removed, err := m.store.PrunePoints(ctx, m.cfg.Prune.Keep)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("kind", ErrorKind(err)).Msg("Failed to prune stored points")
		return 0
	}
	metrics.RecordPrune(removed, count-removed)
	if removed > 0 {
		logging.Ctx(ctx).Debug().
			Int64("removed", removed).
			Int64("remaining", count-removed).
			Msg("Pruned stored points")
	}
	return removed
}

func (m *Manager) logResult(ctx context.Context, r models.CycleResult, kind string) {
	if r.Err != nil {
		logging.Ctx(ctx).Error().
			Err(r.Err).
			Str("kind", kind).
			Int("fetched", r.Fetched).
			Dur("duration", r.Duration).
			Msg("Ingest cycle failed")
		return
	}
	logging.Ctx(ctx).Info().
		Int("fetched", r.Fetched).
		Int("inside", r.Inside).
		Int("buffer", r.Buffer).
		Int("rejected", r.Rejected).
		Int("accepted", r.Accepted).
		Int64("pruned", r.Pruned).
		Dur("duration", r.Duration).
		Msg("Ingest cycle complete")
}
