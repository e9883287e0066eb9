// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package services

import (
	"context"
)

// ContextServer is anything with a suture-style Serve loop:
// *feedback.Service, *websocket.Hub, *evaluation.Service and *audit.Logger.
type ContextServer interface {
	Serve(ctx context.Context) error
}

// NamedService gives a ContextServer a name in supervisor logs.
type NamedService struct {
	inner ContextServer
	name  string
}

// NewFeedbackRouterService supervises the single feedback writer.
func NewFeedbackRouterService(fb ContextServer) *NamedService {
	return &NamedService{inner: fb, name: "feedback-router"}
}

// NewWebSocketHubService supervises the live event hub.
func NewWebSocketHubService(hub ContextServer) *NamedService {
	return &NamedService{inner: hub, name: "websocket-hub"}
}

// NewOptimizerService supervises the periodic weight optimizer.
func NewOptimizerService(optimizer ContextServer) *NamedService {
	return &NamedService{inner: optimizer, name: "weight-optimizer"}
}

// NewAuditRetentionService supervises audit log cleanup.
func NewAuditRetentionService(logger ContextServer) *NamedService {
	return &NamedService{inner: logger, name: "audit-retention"}
}

// Serve implements suture.Service.
func (s *NamedService) Serve(ctx context.Context) error {
	return s.inner.Serve(ctx)
}

func (s *NamedService) String() string {
	return s.name
}
