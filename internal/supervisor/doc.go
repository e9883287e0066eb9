// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

/*
Package supervisor runs the long-lived Ideaforge services under a suture v4
tree:

	ideaforge
	├── data-layer
	│   └── audit-retention
	├── messaging-layer
	│   ├── feedback-router
	│   ├── websocket-hub
	│   └── weight-optimizer
	└── api-layer
	    └── http-server

Crashed services restart with suture's backoff. Supervisor events are
logged through sutureslog on the slog bridge from the logging package:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(services.NewFeedbackRouterService(fb))
	tree.AddAPIService(services.NewHTTPServerService(httpServer, cfg.Server.ShutdownTimeout))
	err = tree.Serve(ctx)
*/
package supervisor
