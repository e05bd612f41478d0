// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

// Package web embeds the map page and its static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed map.html static
var files embed.FS

// MapHTML returns the map page.
func MapHTML() []byte {
	// The file is embedded at build time, so the read cannot fail.
	data, _ := files.ReadFile("map.html")
	return data
}

// Static returns the static asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err) // static/ is embedded above
	}
	return sub
}
