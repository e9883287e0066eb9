// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package events defines the domain notifications emitted by ingestion,
// ranking and feedback, and the sink interface that the audit log and the
// websocket hub implement.
package events

import (
	"context"
	"sync"
	"time"
)

// Type names a domain event.
type Type string

// Event types.
const (
	IdeaAdded          Type = "idea.added"
	IdeaDuplicate      Type = "idea.duplicate"
	IdeaRejected       Type = "idea.rejected"
	RecommendationMade Type = "recommendation.served"
	FeedbackApplied    Type = "feedback.applied"
	FederatedRound     Type = "federated.aggregated"
	WeightsUpdated     Type = "weights.updated"
	IntegrityAlert     Type = "integrity.alert"
)

// Event is one domain notification.
type Event struct {
	Type      Type           `json:"type"`
	IdeaID    string         `json:"idea_id,omitempty"`
	Outcome   string         `json:"outcome,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Sink receives events. Publish must not block on slow consumers.
type Sink interface {
	Publish(ctx context.Context, ev Event)
}

// Fanout publishes to every non-nil sink in order.
type Fanout []Sink

// Publish implements Sink.
func (f Fanout) Publish(ctx context.Context, ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	for _, s := range f {
		if s != nil {
			s.Publish(ctx, ev)
		}
	}
}

// Nop discards events.
type Nop struct{}

// Publish implements Sink.
func (Nop) Publish(context.Context, Event) {}

// Recorder keeps published events in memory. It is meant for tests and
// the CLI, which has no live consumers.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Sink.
func (r *Recorder) Publish(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
