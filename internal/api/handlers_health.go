// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/waypost/internal/ingest"
	"github.com/tomtom215/waypost/internal/models"
)

const healthCheckTimeout = 2 * time.Second

// Health reports store connectivity and the state of the ingest loop.
//
// The status is "healthy", "degraded" when the most recent cycle failed, or
// "unhealthy" with 503 when the store does not answer a ping.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	health := models.HealthStatus{
		Status:       "healthy",
		Version:      h.version,
		CircuitState: h.circuitState(),
		Uptime:       time.Since(h.startTime).Seconds(),
	}

	health.DatabaseOK = h.store.Ping(ctx) == nil
	if health.DatabaseOK {
		if n, err := h.store.CountPoints(ctx); err == nil {
			health.StoredPoints = n
		}
	}

	if h.ingest != nil {
		health.IngestRunning = h.ingest.Running()

		if last := h.ingest.LastCycle(); !last.StartedAt.IsZero() {
			summary := last.Summary(ingest.ErrorKind(last.Err))
			health.LastCycle = &summary
			if last.Err != nil {
				health.Status = "degraded"
			}
		}
		if ts := h.ingest.LastSuccess(); !ts.IsZero() {
			health.LastSuccess = &ts
		}
	}

	if h.hub != nil {
		health.WebsocketPeers = h.hub.GetClientCount()
	}

	stats := h.coords.GetStats()
	health.CoordsCache = models.CacheStatus{
		Enabled:   h.coords.Enabled(),
		Hits:      stats.Hits,
		Misses:    stats.Misses,
		Evictions: stats.Evictions,
		HitRate:   h.coords.HitRate(),
	}

	status := http.StatusOK
	if !health.DatabaseOK {
		health.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     health,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
