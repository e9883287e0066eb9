// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package database

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/idea"
)

// testDBSemaphore serializes DuckDB usage across tests; concurrent CGO
// connections from many tests can stall under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", Threads: 2, IndexThreshold: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return db
}

func newTestIdea(title string, emb []float32, age time.Duration) *idea.Idea {
	ts := idea.Now().Add(-age)
	i := &idea.Idea{
		ID:              idea.NewID(title, ts),
		Title:           title,
		Description:     "Description for " + title,
		Author:          "tester",
		Tags:            []string{"test", "sample"},
		EloRating:       idea.DefaultElo,
		BayesianMean:    idea.DefaultBayesianMean,
		Uncertainty:     idea.DefaultUncertainty,
		Sentiment:       0.25,
		TrendScore:      0.6,
		ProvenanceScore: idea.DefaultProvenance,
		Timestamp:       ts,
		Embedding:       emb,
	}
	i.Sign()
	return i
}

func TestInsertAndGetIdea(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	in := newTestIdea("Solar Water Purifier", []float32{0.6, 0.8, 0}, time.Hour)
	if err := db.InsertIdea(ctx, in); err != nil {
		t.Fatalf("InsertIdea: %v", err)
	}

	got, err := db.GetIdea(ctx, in.ID)
	if err != nil {
		t.Fatalf("GetIdea: %v", err)
	}
	if got.Title != in.Title || got.Author != in.Author || got.TrendScore != in.TrendScore {
		t.Errorf("got %+v, want %+v", got, in)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "test" {
		t.Errorf("Tags = %v", got.Tags)
	}
	if len(got.Embedding) != 3 || got.Embedding[1] != 0.8 {
		t.Errorf("Embedding = %v", got.Embedding)
	}
	if !got.Timestamp.Equal(in.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, in.Timestamp)
	}
	if !got.VerifySignature() {
		t.Error("signature does not verify after round trip")
	}
}

func TestInsertDuplicateTitle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := newTestIdea("Duplicate Me", nil, time.Hour)
	if err := db.InsertIdea(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := newTestIdea("Duplicate Me", nil, 0)
	second.Description = "different"
	err := db.InsertIdea(ctx, second)
	if !errors.Is(err, idea.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}

	got, err := db.GetIdea(ctx, first.ID)
	if err != nil || got.Description != first.Description {
		t.Errorf("original row changed: %+v, %v", got, err)
	}
	if n, _ := db.CountIdeas(ctx); n != 1 {
		t.Errorf("CountIdeas = %d, want 1", n)
	}
}

func TestGetIdeaNotFound(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.GetIdea(context.Background(), "missing"); !errors.Is(err, idea.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateMutable(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	i := newTestIdea("Mutable Idea", nil, 0)
	if err := db.InsertIdea(ctx, i); err != nil {
		t.Fatal(err)
	}
	want := idea.MutableFields{EloRating: 1532, BayesianMean: 0.55, Uncertainty: 0.285}
	if err := db.UpdateMutable(ctx, i.ID, want); err != nil {
		t.Fatalf("UpdateMutable: %v", err)
	}
	got, _ := db.GetIdea(ctx, i.ID)
	if got.Mutable() != want {
		t.Errorf("Mutable = %+v, want %+v", got.Mutable(), want)
	}
	if !got.VerifySignature() {
		t.Error("rating update must not change signed content")
	}

	if err := db.UpdateMutable(ctx, "nope", want); !errors.Is(err, idea.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateMutablePair(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := newTestIdea("Pair Idea A", nil, 0)
	b := newTestIdea("Pair Idea B", nil, 0)
	for _, i := range []*idea.Idea{a, b} {
		if err := db.InsertIdea(ctx, i); err != nil {
			t.Fatal(err)
		}
	}

	winner := idea.MutableFields{EloRating: 1516, BayesianMean: 0.5, Uncertainty: 0.3}
	loser := idea.MutableFields{EloRating: 1484, BayesianMean: 0.5, Uncertainty: 0.3}
	if err := db.UpdateMutablePair(ctx, a.ID, winner, b.ID, loser); err != nil {
		t.Fatalf("UpdateMutablePair: %v", err)
	}
	gotA, _ := db.GetIdea(ctx, a.ID)
	gotB, _ := db.GetIdea(ctx, b.ID)
	if gotA.Mutable() != winner || gotB.Mutable() != loser {
		t.Errorf("pair = %+v / %+v, want %+v / %+v", gotA.Mutable(), gotB.Mutable(), winner, loser)
	}

	// A missing second row rolls back the first.
	bumped := idea.MutableFields{EloRating: 1600, BayesianMean: 0.6, Uncertainty: 0.2}
	if err := db.UpdateMutablePair(ctx, a.ID, bumped, "missing", loser); !errors.Is(err, idea.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	gotA, _ = db.GetIdea(ctx, a.ID)
	if gotA.Mutable() != winner {
		t.Errorf("first row = %+v after failed pair, want %+v", gotA.Mutable(), winner)
	}
}

func TestListIdeasOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	older := newTestIdea("Older", nil, 48*time.Hour)
	newer := newTestIdea("Newer", nil, time.Hour)
	for _, i := range []*idea.Idea{newer, older} {
		if err := db.InsertIdea(ctx, i); err != nil {
			t.Fatal(err)
		}
	}
	list, err := db.ListIdeas(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != older.ID || list[1].ID != newer.ID {
		t.Errorf("order = %v", []string{list[0].Title, list[1].Title})
	}
}

func TestSearchSimilarModesAgree(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	vectors := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
		{0, 0, 1},
		{0.5, 0.5, 0},
	}
	for n, v := range vectors {
		i := newTestIdea(fmt.Sprintf("Idea %d", n), v, time.Duration(len(vectors)-n)*time.Minute)
		if err := db.InsertIdea(ctx, i); err != nil {
			t.Fatal(err)
		}
	}
	query := []float32{2, 0, 0}

	brute, err := db.searchBrute(ctx, query, 3)
	if err != nil {
		t.Fatal(err)
	}
	indexed, err := db.searchIndexed(ctx, query, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(brute) != 3 || len(indexed) != 3 {
		t.Fatalf("lengths = %d/%d, want 3", len(brute), len(indexed))
	}
	for j := range brute {
		if brute[j].Idea.ID != indexed[j].Idea.ID {
			t.Errorf("rank %d: brute %s vs indexed %s", j, brute[j].Idea.Title, indexed[j].Idea.Title)
		}
		if math.Abs(brute[j].Similarity-indexed[j].Similarity) > 1e-9 {
			t.Errorf("rank %d: similarity %v vs %v", j, brute[j].Similarity, indexed[j].Similarity)
		}
	}
	if brute[0].Idea.Title != "Idea 0" || math.Abs(brute[0].Similarity-1) > 1e-9 {
		t.Errorf("top = %s (%v), want Idea 0 (1.0)", brute[0].Idea.Title, brute[0].Similarity)
	}
	if indexed[0].Idea.Description == "" {
		t.Error("indexed results must carry full ideas")
	}

	// Five ideas exceed the threshold of three, so the public entry point
	// takes the indexed path.
	all, err := db.SearchSimilar(ctx, query, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(vectors) {
		t.Errorf("k=0 returned %d, want %d", len(all), len(vectors))
	}
}

func TestSearchSimilarIndexRefresh(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for n := 0; n < 3; n++ {
		if err := db.InsertIdea(ctx, newTestIdea(fmt.Sprintf("Base %d", n), []float32{0, 1}, time.Hour)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := db.SearchSimilar(ctx, []float32{1, 0}, 1); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertIdea(ctx, newTestIdea("Late Match", []float32{1, 0}, 0)); err != nil {
		t.Fatal(err)
	}
	res, err := db.SearchSimilar(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].Idea.Title != "Late Match" {
		t.Errorf("index not refreshed: %+v", res)
	}
}

func TestSearchSimilarEmpty(t *testing.T) {
	db := setupTestDB(t)
	res, err := db.SearchSimilar(context.Background(), []float32{1}, 5)
	if err != nil || len(res) != 0 {
		t.Errorf("SearchSimilar = %v, %v", res, err)
	}
}

func ptr[T any](v T) *T { return &v }

func TestFeedbackLogAndStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := idea.Now()

	records := []*FeedbackRecord{
		{ID: uuid.NewString(), IdeaID: "a", Kind: FeedbackRating, Rating: ptr(5), EloBefore: 1500, EloAfter: 1532, CreatedAt: now},
		{ID: uuid.NewString(), IdeaID: "a", Kind: FeedbackReview, Relevance: ptr(0.8), Novelty: ptr(0.6),
			Feasibility: ptr(0.4), Usefulness: ptr(1.0), EloBefore: 1532, EloAfter: 1540, CreatedAt: now.Add(time.Second)},
		{ID: uuid.NewString(), IdeaID: "a", Kind: FeedbackReview, Relevance: ptr(0.4), Novelty: ptr(0.2),
			Feasibility: ptr(0.2), Usefulness: ptr(0.2), EloBefore: 1540, EloAfter: 1530, CreatedAt: now.Add(2 * time.Second)},
		{ID: uuid.NewString(), IdeaID: "b", Kind: FeedbackCompare, OtherIdeaID: ptr("a"), Preference: ptr("A"),
			EloBefore: 1500, EloAfter: 1516, CreatedAt: now},
	}
	for _, r := range records {
		if err := db.AppendFeedback(ctx, r); err != nil {
			t.Fatalf("AppendFeedback: %v", err)
		}
	}

	log, err := db.FeedbackForIdea(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(log) != 3 || log[0].Kind != FeedbackRating || *log[0].Rating != 5 || log[0].Relevance != nil {
		t.Errorf("log = %+v", log)
	}
	if avg, ok := log[1].ReviewAverage(); !ok || math.Abs(avg-0.7) > 1e-9 {
		t.Errorf("ReviewAverage = %v, %v", avg, ok)
	}

	stats, err := db.FeedbackStats(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Count != 3 || stats.Reviews != 2 {
		t.Errorf("Count/Reviews = %d/%d, want 3/2", stats.Count, stats.Reviews)
	}
	if math.Abs(stats.AvgRelevance-0.6) > 1e-9 || math.Abs(stats.AvgUsefulness-0.6) > 1e-9 {
		t.Errorf("averages = %+v", stats)
	}

	empty, err := db.FeedbackStats(ctx, "none")
	if err != nil || empty.Count != 0 || empty.AvgNovelty != 0 {
		t.Errorf("empty stats = %+v, %v", empty, err)
	}

	outcomes, err := db.ReviewOutcomes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// (0.7 + 0.25) / 2
	if len(outcomes) != 1 || math.Abs(outcomes["a"]-0.475) > 1e-9 {
		t.Errorf("ReviewOutcomes = %v", outcomes)
	}

	all, err := db.AllFeedback(ctx)
	if err != nil || len(all) != 4 {
		t.Errorf("AllFeedback = %d, %v", len(all), err)
	}
	if all[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not scanned")
	}
}

func TestVersions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	i := newTestIdea("Versioned", nil, 0)
	base := idea.Now().Add(-72 * time.Hour)
	for n := 0; n < 3; n++ {
		i.EloRating = 1500 + float64(n)*10
		if err := db.SaveVersion(ctx, SnapshotOf(i, "feedback", base.Add(time.Duration(n)*24*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	vs, err := db.Versions(ctx, i.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(vs) != 3 || vs[2].EloRating != 1520 {
		t.Fatalf("Versions = %+v", vs)
	}
	if rate := EvolutionRate(vs); math.Abs(rate-1.5) > 1e-9 {
		t.Errorf("EvolutionRate = %v, want 1.5", rate)
	}

	last, err := db.LastVersionTimes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !last[i.ID].Equal(base.Add(48 * time.Hour)) {
		t.Errorf("last = %v", last[i.ID])
	}
}

func TestDetectStagnation(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ideas := []*idea.Idea{{ID: "old", Title: "Old"}, {ID: "fresh", Title: "Fresh"}, {ID: "never", Title: "Never"}}
	last := map[string]time.Time{
		"old":   now.AddDate(0, 0, -40),
		"fresh": now.AddDate(0, 0, -5),
	}

	got := DetectStagnation(ideas, last, 30, now)
	if len(got) != 1 || got[0].IdeaID != "old" || got[0].DaysStagnant != 40 {
		t.Errorf("DetectStagnation = %+v", got)
	}
	if got := DetectStagnation(ideas, last, 45, now); len(got) != 0 {
		t.Errorf("45-day threshold = %+v, want none", got)
	}
	if EvolutionRate(nil) != 0 {
		t.Error("EvolutionRate(nil) != 0")
	}
}

func TestTemporalEmbeddings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.StoreEmbedding(ctx, "a", []float32{0.1, 0.2}, map[string]any{"title": "A"}); err != nil {
		t.Fatal(err)
	}
	if err := db.StoreEmbedding(ctx, "b", []float32{0.3, 0.4}, nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		vec     []float32
		wantErr bool
	}{
		{"empty", nil, true},
		{"nan", []float32{float32(math.NaN())}, true},
		{"inf", []float32{float32(math.Inf(1))}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.StoreEmbedding(ctx, "x", tt.vec, nil)
			if (err != nil) != tt.wantErr || (err != nil && !errors.Is(err, ErrInvalidEmbedding)) {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	one, err := db.TemporalEmbeddings(ctx, "a", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(one) != 1 || one[0].Metadata["title"] != "A" || one[0].Embedding[1] != 0.2 {
		t.Errorf("TemporalEmbeddings(a) = %+v", one)
	}

	all, err := db.TemporalEmbeddings(ctx, "", 24)
	if err != nil || len(all) != 2 {
		t.Errorf("TemporalEmbeddings(all) = %d, %v", len(all), err)
	}

	counts, err := db.GetRecordCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts.TemporalEmbeddings != 2 || counts.Ideas != 0 {
		t.Errorf("counts = %+v", counts)
	}
}

func TestVectorEncoding(t *testing.T) {
	v := []float32{1.5, -2.25, 0, float32(math.SmallestNonzeroFloat32)}
	got, err := decodeVector(encodeVector(v))
	if err != nil {
		t.Fatal(err)
	}
	for i := range v {
		if got[i] != v[i] {
			t.Errorf("component %d = %v, want %v", i, got[i], v[i])
		}
	}
	if _, err := decodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated blob")
	}
	if v, err := decodeVector(nil); v != nil || err != nil {
		t.Errorf("decodeVector(nil) = %v, %v", v, err)
	}
}

func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		err        error
		conflict   bool
		constraint bool
		connection bool
	}{
		{errors.New("TransactionContext Error: Transaction conflict: cannot update"), true, false, false},
		{errors.New(`Constraint Error: Duplicate key "id: x" violates primary key constraint`), false, true, false},
		{errors.New("sql: database is closed"), false, false, true},
		{nil, false, false, false},
	}
	for _, tt := range tests {
		if got := isTransactionConflict(tt.err); got != tt.conflict {
			t.Errorf("isTransactionConflict(%v) = %v", tt.err, got)
		}
		if got := isConstraintViolation(tt.err); got != tt.constraint {
			t.Errorf("isConstraintViolation(%v) = %v", tt.err, got)
		}
		if got := isConnectionError(tt.err); got != tt.connection {
			t.Errorf("isConnectionError(%v) = %v", tt.err, got)
		}
	}
}
