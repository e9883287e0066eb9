// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

/*
Package api serves the Ideaforge HTTP API under /api/v1.

Every JSON endpoint answers with the same envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "VALIDATION_FAILED", "message": "k must be at most 20"}, "meta": {...}}

Routes:

	GET  /health/live, /health/ready
	POST /ideas                       201 inserted, 409 duplicate, 422 rejected
	GET  /ideas, /ideas/{id}, /ideas/{id}/provenance, /ideas/{id}/feedback, /ideas/{id}/causal
	POST /recommendations, /recommendations/scenarios
	GET  /weights
	POST /feedback/rating, /feedback/compare, /feedback/review, /feedback/federated
	POST /federated/aggregate
	GET  /federated/history
	POST /evaluate, /evaluate/cross-validate, /optimize
	GET  /audit/report, /audit/integrity, /audit/chain, /audit/events
	GET  /ws                          live events over websocket

Prometheus metrics are served at /metrics outside the versioned tree.

Request bodies are decoded with goccy/go-json and validated with the
shared validator from the validation package. The middleware chain adds a
request ID with logging context, RealIP, panic recovery, CORS, per-IP rate
limiting, security headers, request metrics and an optional request
timeout.
*/
package api
