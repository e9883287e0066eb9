// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package services adapts Ideaforge components to suture.Service.
//
// HTTPServerService turns ListenAndServe into a context-aware Serve with a
// bounded graceful shutdown. NamedService labels components that already
// have a Serve loop (feedback router, websocket hub, weight optimizer,
// audit retention) so suture's event log can name them.
package services
