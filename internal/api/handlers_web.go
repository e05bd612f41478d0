// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package api

import (
	"net/http"

	"github.com/tomtom215/waypost/internal/logging"
	ws "github.com/tomtom215/waypost/internal/websocket"
	"github.com/tomtom215/waypost/web"
)

// Index serves the map page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := w.Write(web.MapHTML()); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("failed to write map page")
	}
}

// Static serves the embedded assets under /static/.
func (h *Handler) Static() http.Handler {
	return http.StripPrefix("/static/", http.FileServerFS(web.Static()))
}

// WebSocket upgrades the connection and registers it with the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Live updates are disabled", nil)
		return
	}
	ws.ServeWS(h.hub, h.cfg.Security.CORSOrigins, w, r)
}
