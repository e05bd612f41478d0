// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/waypost/internal/validation"
)

// Validate checks field rules via struct tags, then the cross-field rules
// the tags cannot express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		if verr.Has("vendor.imei") || verr.Has("vendor.password") {
			return fmt.Errorf("%w (set VENDOR_IMEI and VENDOR_PASSWORD)", verr)
		}
		return verr
	}

	if err := c.validateVendor(); err != nil {
		return err
	}
	if err := c.validateGeofence(); err != nil {
		return err
	}
	return c.validateIngest()
}

func (c *Config) validateVendor() error {
	if err := validateHTTPURL(c.Vendor.LoginURL, "VENDOR_LOGIN_URL"); err != nil {
		return err
	}
	if err := validateHTTPURL(c.Vendor.MarkerURL, "VENDOR_MARKER_URL"); err != nil {
		return err
	}
	for _, r := range c.Vendor.IMEI {
		if r < '0' || r > '9' {
			return errors.New("VENDOR_IMEI must contain only digits")
		}
	}
	return nil
}

func (c *Config) validateGeofence() error {
	g := c.Geofence
	if g.MinLat > g.MaxLat {
		return fmt.Errorf("GEOFENCE_MIN_LAT (%f) must not exceed GEOFENCE_MAX_LAT (%f)", g.MinLat, g.MaxLat)
	}
	if g.MinLng > g.MaxLng {
		return fmt.Errorf("GEOFENCE_MIN_LNG (%f) must not exceed GEOFENCE_MAX_LNG (%f)", g.MinLng, g.MaxLng)
	}
	if g.MinLat-g.Buffer < -90 || g.MaxLat+g.Buffer > 90 {
		return errors.New("GEOFENCE_BUFFER pushes the expanded latitude range outside [-90, 90]")
	}
	return nil
}

func (c *Config) validateIngest() error {
	in := c.Ingest
	if in.Interval%time.Second != 0 {
		return fmt.Errorf("INGEST_INTERVAL must be a whole number of seconds, got %s", in.Interval)
	}
	if in.Prune.Enabled && in.Prune.Keep > in.Prune.Threshold {
		return fmt.Errorf("PRUNE_KEEP (%d) must not exceed PRUNE_THRESHOLD (%d)", in.Prune.Keep, in.Prune.Threshold)
	}
	if in.RetryAttempts > 1 && in.RetryDelay <= 0 {
		return errors.New("INGEST_RETRY_DELAY must be positive when INGEST_RETRY_ATTEMPTS > 1")
	}
	return nil
}

// validateHTTPURL requires an absolute http(s) URL with a host.
func validateHTTPURL(raw, name string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s must not carry a query string", name)
	}
	return nil
}
