// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

/*
Package config loads Waypost configuration with Koanf v2.

Sources, lowest to highest priority:

  - built-in defaults (defaultConfig)
  - a YAML file: CONFIG_PATH, ./config.yaml, ./config.yml or /etc/waypost/config.yaml
  - a dotenv file: DOTENV_PATH or ./.env, loaded with godotenv into the process
    environment without overriding variables that are already set
  - environment variables, mapped explicitly in envMappings

The vendor credentials (VENDOR_IMEI, VENDOR_PASSWORD, with TRACKER_* aliases)
have no defaults; Load fails when either is missing.

Example YAML:

	vendor:
	  imei: "861261027896790"
	  password: "secret"
	ingest:
	  interval: 5s
	  prune:
	    threshold: 50
	    keep: 50
	geofence:
	  min_lat: 55.750182
	  max_lat: 55.750400
	  min_lng: 49.273466
	  max_lng: 49.273876
	  buffer: 0.0003

Validation runs go-playground/validator tags through internal/validation,
followed by cross-field checks in config_validate.go.
*/
package config
