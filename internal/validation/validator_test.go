// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package validation

import (
	"strings"
	"testing"
	"time"
)

type innerSettings struct {
	Keep     int           `koanf:"keep" validate:"gte=0"`
	Interval time.Duration `koanf:"interval" validate:"gte=1s"`
}

type outerSettings struct {
	Name   string        `koanf:"name" validate:"required,max=15"`
	Lat    float64       `koanf:"lat" validate:"latitude"`
	Mode   string        `koanf:"mode" validate:"oneof=json console"`
	Inner  innerSettings `koanf:"inner"`
	Plain  int           `validate:"gte=1"`
	Hidden string        `koanf:"-"`
}

func validOuter() outerSettings {
	return outerSettings{
		Name:  "861261027896790",
		Lat:   55.75,
		Mode:  "json",
		Inner: innerSettings{Keep: 10, Interval: 5 * time.Second},
		Plain: 1,
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil {
		t.Fatal("GetValidator() returned nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	s := validOuter()
	if err := ValidateStruct(&s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStruct_FieldPaths(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*outerSettings)
		field   string
		message string
	}{
		{"required", func(s *outerSettings) { s.Name = "" }, "name", "name is required"},
		{"max string", func(s *outerSettings) { s.Name = strings.Repeat("1", 16) }, "name", "name must be at most 15 characters"},
		{"latitude", func(s *outerSettings) { s.Lat = 91 }, "lat", "lat must be a valid latitude (-90 to 90)"},
		{"oneof", func(s *outerSettings) { s.Mode = "xml" }, "mode", "mode must be one of: json console"},
		{"nested gte", func(s *outerSettings) { s.Inner.Keep = -1 }, "inner.keep", "inner.keep must be greater than or equal to 0"},
		{"duration", func(s *outerSettings) { s.Inner.Interval = 500 * time.Millisecond }, "inner.interval", "inner.interval must be greater than or equal to 1s"},
		{"no koanf tag", func(s *outerSettings) { s.Plain = 0 }, "Plain", "Plain must be greater than or equal to 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validOuter()
			tt.mutate(&s)

			err := ValidateStruct(&s)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !err.Has(tt.field) {
				t.Errorf("expected failure on %q, got %v", tt.field, err)
			}
			if err.Error() != tt.message {
				t.Errorf("message = %q, want %q", err.Error(), tt.message)
			}
		})
	}
}

func TestValidateStruct_MultipleErrorsJoined(t *testing.T) {
	s := validOuter()
	s.Name = ""
	s.Mode = ""

	err := ValidateStruct(&s)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(err.Errors()))
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("expected joined message, got %q", err.Error())
	}
	fe := err.Errors()[0]
	if fe.Tag() != "required" || fe.Value() != "" {
		t.Errorf("unexpected first error: tag=%s value=%v", fe.Tag(), fe.Value())
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	err := ValidateStruct("not a struct")
	if err == nil {
		t.Fatal("expected error for non-struct input")
	}
	if err.Errors()[0].Field() != "unknown" {
		t.Errorf("expected unknown field, got %q", err.Errors()[0].Field())
	}
}
