// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/database"
)

func setupDuckDBStore(t *testing.T) *DuckDBStore {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1, IndexThreshold: 100})
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewDuckDBStore(db.Conn())
	if err := store.CreateTable(context.Background()); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	return store
}

func TestDuckDBStore_SaveGet(t *testing.T) {
	store := setupDuckDBStore(t)
	ctx := context.Background()

	ts := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	in := &Event{
		ID:          "evt-1",
		Timestamp:   ts,
		Type:        EventTypeFeedbackApplied,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		Actor:       SystemActor(),
		Target:      &Target{ID: "idea-1", Type: "idea", Name: "Solar kiosks"},
		Source:      Source{IPAddress: "192.0.2.4", UserAgent: "curl"},
		Action:      "feedback",
		Description: "Feedback applied",
		Metadata:    json.RawMessage(`{"elo_change":16}`),
		RequestID:   "req-1",
	}
	if err := store.Save(ctx, in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, "evt-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, ts)
	}
	if got.Type != in.Type || got.Severity != in.Severity || got.Outcome != in.Outcome {
		t.Errorf("got %s/%s/%s", got.Type, got.Severity, got.Outcome)
	}
	if got.Target == nil || got.Target.Name != "Solar kiosks" {
		t.Errorf("Target = %+v", got.Target)
	}
	if got.Source.UserAgent != "curl" || got.RequestID != "req-1" {
		t.Errorf("Source = %+v, RequestID = %q", got.Source, got.RequestID)
	}
	var meta map[string]int
	if err := json.Unmarshal(got.Metadata, &meta); err != nil || meta["elo_change"] != 16 {
		t.Errorf("Metadata = %s, err %v", got.Metadata, err)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrEventNotFound", err)
	}
	if err := store.Save(ctx, nil); err == nil {
		t.Error("Save(nil) succeeded")
	}
}

func TestDuckDBStore_QueryCountDelete(t *testing.T) {
	store := setupDuckDBStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	fixtures := []*Event{
		{ID: "a", Timestamp: base, Type: EventTypeIdeaAdded, Severity: SeverityInfo, Outcome: OutcomeSuccess,
			Actor: SystemActor(), Target: &Target{ID: "i1", Type: "idea"}, Action: "ingest", Description: "Idea added"},
		{ID: "b", Timestamp: base.AddDate(0, 0, 1), Type: EventTypeIntegrityAlert, Severity: SeverityCritical, Outcome: OutcomeFailure,
			Actor: SystemActor(), Target: &Target{ID: "i2", Type: "idea"}, Action: "verify", Description: "Integrity mismatch detected"},
		{ID: "c", Timestamp: base.AddDate(0, 0, 2), Type: EventTypeAdminAction, Severity: SeverityWarning, Outcome: OutcomeSuccess,
			Actor: Actor{ID: "cli", Type: "user"}, Action: "seed", Description: "Seeded sample ideas"},
	}
	for _, e := range fixtures {
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save(%s) error = %v", e.ID, err)
		}
	}

	tests := []struct {
		name   string
		filter QueryFilter
		want   []string
	}{
		{"newest first", DefaultQueryFilter(), []string{"c", "b", "a"}},
		{"oldest first", QueryFilter{}, []string{"a", "b", "c"}},
		{"by type", QueryFilter{Types: []EventType{EventTypeIntegrityAlert}}, []string{"b"}},
		{"by severity", QueryFilter{Severities: []Severity{SeverityInfo, SeverityWarning}}, []string{"a", "c"}},
		{"by target", QueryFilter{TargetID: "i1"}, []string{"a"}},
		{"by actor", QueryFilter{ActorID: "cli"}, []string{"c"}},
		{"search", QueryFilter{SearchText: "Mismatch"}, []string{"b"}},
		{"paged", QueryFilter{Limit: 1, Offset: 1, OrderDesc: true}, []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Query() returned %d events, want %d", len(got), len(tt.want))
			}
			for i, e := range got {
				if e.ID != tt.want[i] {
					t.Errorf("event[%d] = %s, want %s", i, e.ID, tt.want[i])
				}
			}
		})
	}

	n, err := store.Count(ctx, QueryFilter{Outcomes: []Outcome{OutcomeSuccess}})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count(success) = %d, want 2", n)
	}

	stats, err := store.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.TotalEvents != 3 || stats.EventsByType[string(EventTypeAdminAction)] != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.OldestEvent == nil || !stats.OldestEvent.Equal(base) {
		t.Errorf("OldestEvent = %v, want %v", stats.OldestEvent, base)
	}

	deleted, err := store.Delete(ctx, base.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Delete() = %d, want 1", deleted)
	}
	if n, _ := store.Count(ctx, QueryFilter{}); n != 2 {
		t.Errorf("Count after delete = %d, want 2", n)
	}
}

func TestDuckDBStore_WithLogger(t *testing.T) {
	store := setupDuckDBStore(t)
	logger := NewLogger(store, DefaultConfig())

	logger.Log(&Event{Type: EventTypeAuditReport, Severity: SeverityInfo, Outcome: OutcomeSuccess,
		Actor: SystemActor(), Action: "audit", Description: "Audit report PASS"})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	n, err := logger.Count(context.Background(), QueryFilter{Types: []EventType{EventTypeAuditReport}})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}
