// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/ideaforge/internal/idea"
	"github.com/tomtom215/ideaforge/internal/recommend"
)

// HealthStatus is the readiness report.
type HealthStatus struct {
	Status           string          `json:"status"`
	Database         bool            `json:"database_connected"`
	ChainLength      int             `json:"chain_length"`
	ChainValid       bool            `json:"chain_valid"`
	WebsocketClients int             `json:"websocket_clients"`
	Weights          idea.Weights    `json:"weights"`
	Engine           recommend.Stats `json:"engine"`
	Uptime           float64         `json:"uptime_seconds"`
}

// HealthLive handles GET /api/v1/health/live. It reports only that the
// process is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready. It answers 503 while the
// database is unreachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := HealthStatus{
		Status:   "ready",
		Database: h.deps.Store.Ping(r.Context()) == nil,
		Weights:  h.deps.Engine.Weights(),
		Engine:   h.deps.Engine.Stats(),
		Uptime:   time.Since(h.startTime).Seconds(),
	}
	if h.deps.Ledger != nil {
		summary := h.deps.Ledger.Summary()
		status.ChainLength = summary.TotalBlocks
		status.ChainValid = summary.ChainValid
	}
	if h.deps.Hub != nil {
		status.WebsocketClients = h.deps.Hub.ClientCount()
	}

	if !status.Database {
		status.Status = "degraded"
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Database unavailable", status)
		return
	}
	rw.Success(status)
}
