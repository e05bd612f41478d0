// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/waypost/internal/geofence"
	"github.com/tomtom215/waypost/internal/models"
)

// GeofenceResponse is the /api/geofence payload.
type GeofenceResponse struct {
	Exact    geofence.Bounds `json:"exact"`
	Expanded geofence.Bounds `json:"expanded"`
	Center   LatLng          `json:"center"`
}

// LatLng is a single coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geofence returns the rectangles the map page draws.
func (h *Handler) Geofence(w http.ResponseWriter, _ *http.Request) {
	lat, lng := h.fence.Center()
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: GeofenceResponse{
			Exact:    h.fence.Exact(),
			Expanded: h.fence.Expanded(),
			Center:   LatLng{Lat: lat, Lng: lng},
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
