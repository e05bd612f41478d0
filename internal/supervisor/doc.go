// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

/*
Package supervisor runs Waypost's long-lived services under a suture v4 tree.

# Tree

	waypost (root)
	├── ingest-layer
	│   └── ingest-manager      poll, classify, persist, prune
	└── api-layer
	    ├── websocket-hub       points_updated fan-out
	    └── http-server         map page and API

The two layers fail independently. A vendor outage that makes the ingest
manager crash and restart never takes the HTTP server down; readers keep
getting the last committed points.

# Restart policy

Each layer restarts a failed service immediately until FailureThreshold
failures have accumulated (decaying at FailureDecay per second), then waits
FailureBackoff before trying again. Supervisor events are logged through
sutureslog into the zerolog stream:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddIngestService(services.NewIngestService(manager))
	tree.AddAPIService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = <-tree.ServeBackground(ctx)

# Shutdown

Cancelling the context passed to ServeBackground stops every service. Each service gets
ShutdownTimeout to return; UnstoppedServiceReport lists the ones that did not.
*/
package supervisor
