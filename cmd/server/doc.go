// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

/*
Package main is the Ideaforge HTTP server.

Startup order:

 1. Configuration: koanf v2 layering defaults, config.yaml and environment
 2. Logging: zerolog, with a slog bridge for the supervisor
 3. Storage: DuckDB idea store and the badger provenance ledger
 4. Collaborators: embedder, generator, audit log
 5. Recommendation engine, feedback writer, weight optimizer
 6. WebSocket hub and HTTP server

Every long-running piece runs under the suture tree from the supervisor
package:

	ideaforge
	├── data-layer
	│   └── audit-retention
	├── messaging-layer
	│   ├── feedback-router
	│   ├── websocket-hub
	│   └── weight-optimizer (OPTIMIZER_ENABLED)
	└── api-layer
	    └── http-server

SIGINT and SIGTERM cancel the tree. The HTTP server drains in-flight
requests for HTTP_SHUTDOWN_TIMEOUT before the stores are closed.

Common environment variables:

	DUCKDB_PATH=/data/ideaforge.duckdb
	LEDGER_PATH=/data/ledger
	HTTP_PORT=8088
	CORS_ORIGINS=https://ideas.example.com
	EMBEDDING_PROVIDER=ollama OLLAMA_URL=http://ollama:11434
	LOG_LEVEL=debug LOG_FORMAT=console
*/
package main
