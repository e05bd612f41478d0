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
	"github.com/tomtom215/waypost/internal/logging"
	"github.com/tomtom215/waypost/internal/models"
)

// RunIngest runs one cycle synchronously and returns its summary.
//
// A failed cycle answers 502 EXTERNAL_SERVICE_FAILED for vendor-side kinds and
// 500 DATABASE_ERROR for persistence, with the summary under details.cycle.
func (h *Handler) RunIngest(w http.ResponseWriter, r *http.Request) {
	if h.ingest == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Ingestion is not configured", nil)
		return
	}

	// A client disconnect must not abort a cycle that may already be writing.
	result := h.ingest.RunCycle(context.WithoutCancel(r.Context()))
	kind := ingest.ErrorKind(result.Err)
	summary := result.Summary(kind)

	logging.Ctx(r.Context()).Info().
		Str("cycle_id", result.CycleID).
		Str("error_kind", kind).
		Msg("manual ingestion cycle triggered")

	if result.Err != nil {
		status, code := http.StatusBadGateway, "EXTERNAL_SERVICE_FAILED"
		if kind == ingest.KindPersistence {
			status, code = http.StatusInternalServerError, "DATABASE_ERROR"
		}
		respondErrorWithDetails(w, status, code, "Ingestion cycle failed", result.Err,
			map[string]interface{}{"cycle": summary})
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   summary,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: result.Duration.Milliseconds(),
		},
	})
}
