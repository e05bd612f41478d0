// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

/*
Package services adapts Waypost components to suture.Service.

Each wrapper turns a component's own lifecycle into the blocking,
context-aware Serve(ctx) error that suture expects:

	IngestService        Start(ctx)/Stop() of the ingest manager
	WebSocketHubService  RunWithContext(ctx) of the websocket hub
	HTTPServerService    ListenAndServe()/Shutdown(ctx) of *http.Server

Serve returns ctx.Err() on a requested shutdown. Any other error tells the
supervisor the service failed and should be restarted under its backoff
policy. Every wrapper implements fmt.Stringer so that supervisor events name
the service.
*/
package services
