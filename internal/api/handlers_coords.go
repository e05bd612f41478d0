// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypost/internal/logging"
	"github.com/tomtom215/waypost/internal/models"
)

// Coords serves every stored point, oldest first, as a bare JSON array.
func (h *Handler) Coords(w http.ResponseWriter, r *http.Request) {
	data, cached, err := h.coords.GetOrLoad(coordsCacheKey, func() ([]byte, error) {
		// Concurrent callers share this load, so it must outlive any one of them.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.cfg.Server.Timeout)
		defer cancel()
		return h.loadCoords(ctx)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load coordinates", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("failed to write coords response")
	}
}

func (h *Handler) loadCoords(ctx context.Context) ([]byte, error) {
	points, err := h.store.ListPoints(ctx)
	if err != nil {
		return nil, err
	}

	// Non-nil so that an empty table encodes as [] rather than null.
	out := make([]models.CoordPoint, 0, len(points))
	for _, p := range points {
		out = append(out, models.CoordPointFrom(p))
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode coords: %w", err)
	}
	return data, nil
}
