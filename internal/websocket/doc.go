// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

/*
Package websocket pushes live updates to open map pages.

The map page polls /api/coords on a timer; a websocket notification lets it
refresh as soon as an ingestion cycle commits instead of waiting for the
next poll.

Key Components:

  - Hub: owns the client set and fans messages out to every client
  - Client: one connection with a read pump and a write pump
  - ServeWS: upgrades an HTTP request and registers the client

Message Types:

  - points_updated: a cycle committed; data carries its counts
  - ping / pong: application-level keepalive sent by the page

Wire format:

	{"type":"points_updated","data":{"cycle_id":"1a2b3c4d","accepted":3,...}}

Usage:

	hub := websocket.NewHub()
	go hub.RunWithContext(ctx)

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
	    websocket.ServeWS(hub, origins, w, r)
	})

	hub.BroadcastPointsUpdated(result)

Thread Safety:

Broadcasts never block: when the hub's queue is full the message is
dropped, and a client whose send buffer is full is disconnected.
*/
package websocket
