// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package api

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/waypost/internal/models"
)

func newTestRouter(t *testing.T, store PointStore, runner CycleRunner) http.Handler {
	t.Helper()
	h := newTestHandler(t, store, runner)
	mw := NewChiMiddleware(ChiMiddlewareConfigFromSecurity(h.cfg.Security))
	return NewRouter(h, mw).SetupChi()
}

func TestRouter_Routes(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &mockStore{}, &mockRunner{})

	tests := []struct {
		method      string
		path        string
		wantCode    int
		wantType    string
		wantContain string
	}{
		{http.MethodGet, "/", http.StatusOK, "text/html", "leaflet"},
		{http.MethodGet, "/static/map.js", http.StatusOK, "javascript", "points_updated"},
		{http.MethodGet, "/api/coords", http.StatusOK, "application/json", "[]"},
		{http.MethodGet, "/api/geofence", http.StatusOK, "application/json", `"expanded"`},
		{http.MethodGet, "/api/health", http.StatusOK, "application/json", `"database_connected":true`},
		{http.MethodPost, "/api/ingest/run", http.StatusOK, "application/json", `"cycle_id"`},
		{http.MethodGet, "/ws", http.StatusServiceUnavailable, "application/json", "SERVICE_UNAVAILABLE"},
		{http.MethodGet, "/metrics", http.StatusOK, "text/plain", "ingest_cycles_in_flight"},
		{http.MethodGet, "/api/nope", http.StatusNotFound, "", ""},
		{http.MethodGet, "/api/ingest/run", http.StatusMethodNotAllowed, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantType != "" && !strings.Contains(rec.Header().Get("Content-Type"), tt.wantType) {
				t.Errorf("Content-Type = %q, want %q", rec.Header().Get("Content-Type"), tt.wantType)
			}
			if tt.wantContain != "" && !strings.Contains(rec.Body.String(), tt.wantContain) {
				t.Errorf("body does not contain %q", tt.wantContain)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
		})
	}
}

func TestRouter_APISecurityHeadersOnlyOnAPI(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &mockStore{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/geofence", nil))
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("expected X-Frame-Options on API route")
	}
}

func TestRouter_CoordsGzip(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &mockStore{points: []models.StoredPoint{samplePoint(1, true)}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/coords", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q", rec.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	body, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(body), `"in_actual_building":1`) {
		t.Errorf("unexpected body %s", body)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &mockStore{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/coords", nil)
	req.Header.Set("Origin", "https://map.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Errorf("missing Access-Control-Allow-Origin: %v", rec.Header())
	}
}
