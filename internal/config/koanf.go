// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the YAML files searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/waypost/config.yaml",
	"/etc/waypost/config.yml",
}

const (
	// ConfigPathEnvVar overrides the YAML config file path.
	ConfigPathEnvVar = "CONFIG_PATH"

	// DotEnvPathEnvVar overrides the dotenv file path (default ".env").
	DotEnvPathEnvVar = "DOTENV_PATH"

	// DefaultUserAgent is a desktop Chrome string; the vendor gates on it.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// defaultConfig returns every default. Credentials have none.
func defaultConfig() *Config {
	return &Config{
		Vendor: VendorConfig{
			LoginURL:             "https://www.365gps.net/npost_login.php",
			MarkerURL:            "https://www.365gps.net/post_map_marker_list.php",
			TimezoneMinutes:      -180,
			UserAgent:            DefaultUserAgent,
			Timeout:              15 * time.Second,
			InsecureSkipVerify:   true,
			MaxRequestsPerSecond: 2,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:             false,
				ConsecutiveFailures: 5,
				OpenTimeout:         time.Minute,
			},
		},
		Geofence: GeofenceConfig{
			MinLat: 55.750182,
			MaxLat: 55.750400,
			MinLng: 49.273466,
			MaxLng: 49.273876,
			Buffer: 0.0003,
		},
		Ingest: IngestConfig{
			Interval:      5 * time.Second,
			CycleTimeout:  30 * time.Second,
			RetryAttempts: 1,
			RetryDelay:    time.Second,
			Prune: PruneConfig{
				Enabled:   true,
				Threshold: 50,
				Keep:      50,
			},
		},
		Database: DatabaseConfig{
			Path:      "data/waypost.duckdb",
			MaxMemory: "512MB",
			Threads:   0,
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    5000,
			Timeout: 30 * time.Second,
		},
		API: APIConfig{
			CoordsCacheTTL: 5 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     300,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration with clear precedence: ENV > .env > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// godotenv never overrides variables already set in the environment.
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func loadDotEnv() error {
	path := os.Getenv(DotEnvPathEnvVar)
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load dotenv file %s: %w", path, err)
}

// sliceConfigPaths are parsed from comma-separated env strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Unmapped variables are ignored so unrelated environment never leaks into config.
var envMappings = map[string]string{
	// Vendor
	"vendor_login_url":            "vendor.login_url",
	"vendor_marker_url":           "vendor.marker_url",
	"vendor_imei":                 "vendor.imei",
	"tracker_imei":                "vendor.imei",
	"vendor_password":             "vendor.password",
	"tracker_password":            "vendor.password",
	"vendor_timezone_minutes":     "vendor.timezone_minutes",
	"vendor_user_agent":           "vendor.user_agent",
	"vendor_timeout":              "vendor.timeout",
	"vendor_insecure_skip_verify": "vendor.insecure_skip_verify",
	"vendor_max_rps":              "vendor.max_requests_per_second",
	"vendor_circuit_breaker":      "vendor.circuit_breaker.enabled",
	"vendor_cb_failures":          "vendor.circuit_breaker.consecutive_failures",
	"vendor_cb_open_timeout":      "vendor.circuit_breaker.open_timeout",

	// Geofence
	"geofence_min_lat": "geofence.min_lat",
	"geofence_max_lat": "geofence.max_lat",
	"geofence_min_lng": "geofence.min_lng",
	"geofence_max_lng": "geofence.max_lng",
	"geofence_buffer":  "geofence.buffer",

	// Ingest
	"ingest_interval":       "ingest.interval",
	"fetch_interval":        "ingest.interval",
	"ingest_cycle_timeout":  "ingest.cycle_timeout",
	"ingest_retry_attempts": "ingest.retry_attempts",
	"ingest_retry_delay":    "ingest.retry_delay",
	"prune_enabled":         "ingest.prune.enabled",
	"prune_threshold":       "ingest.prune.threshold",
	"prune_keep":            "ingest.prune.keep",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Server
	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",

	// API
	"coords_cache_ttl": "api.coords_cache_ttl",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"rate_limit_disabled": "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
//   - VENDOR_IMEI -> vendor.imei
//   - INGEST_INTERVAL -> ingest.interval
//   - DUCKDB_PATH -> database.path
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
