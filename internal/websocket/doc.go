// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package websocket pushes live pipeline events to browser clients.
//
// The Hub is registered as an events.Sink, so new ideas, rating changes,
// federated rounds, weight updates and integrity alerts reach every
// connected client as JSON frames:
//
//	{"type":"rating_changed","data":{"idea_id":"3f2a...","outcome":"rating"},"timestamp":"..."}
//
// Each Client runs a read pump, which answers application-level pings and
// detects disconnects, and a write pump, which drains the client's send
// buffer and sends protocol pings. A client whose buffer fills is dropped
// rather than slowing the broadcast.
//
// Serve runs under the supervisor; on shutdown every client is closed.
package websocket
