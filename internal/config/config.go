// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for everything except credentials
//  2. Config File: optional YAML (config.yaml, CONFIG_PATH)
//  3. .env File: optional dotenv file merged into the process environment
//  4. Environment Variables: override any setting
//
// Config is immutable after Load() and is passed by pointer into each
// component at construction time.
type Config struct {
	Vendor   VendorConfig   `koanf:"vendor"`
	Geofence GeofenceConfig `koanf:"geofence"`
	Ingest   IngestConfig   `koanf:"ingest"`
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// VendorConfig describes the 365gps web API session used to fetch locations.
type VendorConfig struct {
	// LoginURL receives the form-encoded login POST.
	LoginURL string `koanf:"login_url" validate:"required,url"`

	// MarkerURL returns the marker list; the timezonemins query parameter is appended.
	MarkerURL string `koanf:"marker_url" validate:"required,url"`

	// IMEI is the device identifier, also used as the login username.
	IMEI string `koanf:"imei" validate:"required,max=15"`

	// Password is the shared device secret. Never logged.
	Password string `koanf:"password" validate:"required"`

	// TimezoneMinutes is sent as ?timezonemins=; the vendor shifts signal times by it.
	TimezoneMinutes int `koanf:"timezone_minutes" validate:"gte=-720,lte=840"`

	// UserAgent is sent on every request; the vendor rejects non-browser agents.
	UserAgent string `koanf:"user_agent" validate:"required"`

	// Timeout bounds each HTTP request, including reading the body.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// InsecureSkipVerify disables TLS verification. The vendor chain does not verify.
	InsecureSkipVerify bool `koanf:"insecure_skip_verify"`

	// MaxRequestsPerSecond spaces vendor requests across overlapping cycles.
	MaxRequestsPerSecond float64 `koanf:"max_requests_per_second" validate:"gt=0"`

	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// CircuitBreakerConfig controls the optional gobreaker wrapper around the vendor client.
type CircuitBreakerConfig struct {
	Enabled bool `koanf:"enabled"`

	// ConsecutiveFailures opens the circuit.
	ConsecutiveFailures uint32 `koanf:"consecutive_failures" validate:"gte=1"`

	// OpenTimeout is how long the circuit stays open before a half-open probe.
	OpenTimeout time.Duration `koanf:"open_timeout" validate:"gt=0"`
}

// GeofenceConfig is the exact building rectangle plus its buffer margin in degrees.
type GeofenceConfig struct {
	MinLat float64 `koanf:"min_lat" validate:"latitude"`
	MaxLat float64 `koanf:"max_lat" validate:"latitude"`
	MinLng float64 `koanf:"min_lng" validate:"longitude"`
	MaxLng float64 `koanf:"max_lng" validate:"longitude"`
	Buffer float64 `koanf:"buffer" validate:"gte=0,lt=1"`
}

// IngestConfig drives the poll-filter-persist loop.
type IngestConfig struct {
	// Interval between cycle triggers, measured trigger to trigger.
	Interval time.Duration `koanf:"interval" validate:"gte=1s"`

	// CycleTimeout bounds a single cycle including retries.
	CycleTimeout time.Duration `koanf:"cycle_timeout" validate:"gt=0"`

	// RetryAttempts is the total number of fetch attempts per cycle; 1 disables retry.
	RetryAttempts int `koanf:"retry_attempts" validate:"gte=1,lte=10"`

	// RetryDelay is the first backoff delay; it doubles per attempt.
	RetryDelay time.Duration `koanf:"retry_delay" validate:"gte=0"`

	Prune PruneConfig `koanf:"prune"`
}

// PruneConfig keeps only the newest Keep rows once Threshold rows are stored.
type PruneConfig struct {
	Enabled   bool `koanf:"enabled"`
	Threshold int  `koanf:"threshold" validate:"gte=1"`
	Keep      int  `koanf:"keep" validate:"gte=0"`
}

// DatabaseConfig configures the embedded DuckDB point store.
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory" validate:"required"`
	Threads   int    `koanf:"threads" validate:"gte=0"` // 0 = runtime.NumCPU()
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// APIConfig tunes the query endpoints.
type APIConfig struct {
	// CoordsCacheTTL caches the encoded /api/coords payload; cleared after every cycle commit.
	CoordsCacheTTL time.Duration `koanf:"coords_cache_ttl" validate:"gte=0"`
}

// SecurityConfig holds CORS and rate limit settings for the HTTP surface.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, optional files and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
