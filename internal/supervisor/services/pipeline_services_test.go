// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/ideaforge/internal/websocket"
)

type blockingServer struct {
	served chan struct{}
}

func (b *blockingServer) Serve(ctx context.Context) error {
	close(b.served)
	<-ctx.Done()
	return ctx.Err()
}

func TestNamedServices(t *testing.T) {
	tests := []struct {
		build func(ContextServer) *NamedService
		want  string
	}{
		{NewFeedbackRouterService, "feedback-router"},
		{NewWebSocketHubService, "websocket-hub"},
		{NewOptimizerService, "weight-optimizer"},
		{NewAuditRetentionService, "audit-retention"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			inner := &blockingServer{served: make(chan struct{})}
			svc := tt.build(inner)
			if svc.String() != tt.want {
				t.Errorf("String() = %q, want %q", svc.String(), tt.want)
			}

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			<-inner.served
			cancel()
			if err := <-errCh; !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() = %v, want context.Canceled", err)
			}
		})
	}
}

func TestWebSocketHubService_StopsHub(t *testing.T) {
	svc := NewWebSocketHubService(websocket.NewHub())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, want context.DeadlineExceeded", err)
	}
}
