// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/tomtom215/waypost/internal/api"
	"github.com/tomtom215/waypost/internal/config"
	"github.com/tomtom215/waypost/internal/database"
	"github.com/tomtom215/waypost/internal/geofence"
	"github.com/tomtom215/waypost/internal/ingest"
	"github.com/tomtom215/waypost/internal/logging"
	"github.com/tomtom215/waypost/internal/supervisor"
	"github.com/tomtom215/waypost/internal/supervisor/services"
	"github.com/tomtom215/waypost/internal/tracker"
	ws "github.com/tomtom215/waypost/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const vendorPingTimeout = 20 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("imei", logging.MaskIMEI(cfg.Vendor.IMEI)).
		Str("db_path", cfg.Database.Path).
		Dur("interval", cfg.Ingest.Interval).
		Msg("Starting Waypost")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	// Runs after the supervisor has stopped every service.
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	client, err := tracker.NewClient(&cfg.Vendor)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create vendor client")
	}

	var fetcher tracker.Fetcher = client
	var breaker *tracker.CircuitBreakerClient
	if cfg.Vendor.CircuitBreaker.Enabled {
		breaker = tracker.NewCircuitBreakerClient(client, cfg.Vendor.CircuitBreaker)
		fetcher = breaker
		logging.Info().
			Uint32("consecutive_failures", cfg.Vendor.CircuitBreaker.ConsecutiveFailures).
			Dur("open_timeout", cfg.Vendor.CircuitBreaker.OpenTimeout).
			Msg("Vendor circuit breaker enabled")
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), vendorPingTimeout)
	if err := fetcher.Ping(pingCtx); err != nil {
		logging.Warn().Err(err).Msg("Failed to log in to the tracker service (will retry every cycle)")
	} else {
		logging.Info().Msg("Logged in to the tracker service successfully")
	}
	pingCancel()

	fence, err := geofence.New(geofence.BoundsFromConfig(cfg.Geofence))
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid geofence")
	}

	warnAboutSecurity(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  shutdownTimeout(cfg),
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	wsHub := ws.NewHub()
	manager := ingest.NewManager(db, fetcher, fence, &cfg.Ingest)

	handler := api.NewHandler(cfg, db, manager, fence, wsHub, version)
	defer handler.Close()
	if breaker != nil {
		handler.SetCircuit(breaker)
	}
	manager.AddOnCycleCompleted(handler.OnCycleCompleted)

	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// POST /api/ingest/run holds the response for a whole cycle.
		WriteTimeout: max(cfg.Server.Timeout, cfg.Ingest.CycleTimeout+5*time.Second),
		IdleTimeout:  60 * time.Second,
	}

	tree.AddIngestService(services.NewIngestService(manager))
	tree.AddAPIService(services.NewWebSocketHubService(wsHub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("Services added to supervisor tree")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// shutdownTimeout gives the ingest service time to finish a running cycle.
func shutdownTimeout(cfg *config.Config) time.Duration {
	return max(10*time.Second, cfg.Ingest.CycleTimeout+5*time.Second)
}

func warnAboutSecurity(cfg *config.Config) {
	if cfg.Vendor.InsecureSkipVerify {
		logging.Warn().Msg("TLS verification of the tracker service is disabled (VENDOR_INSECURE_SKIP_VERIFY=true)")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_DISABLED=true)")
	}
	if slices.Contains(cfg.Security.CORSOrigins, "*") {
		logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); set specific origins for public deployments")
	}
}
