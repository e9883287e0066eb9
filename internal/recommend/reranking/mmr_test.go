// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package reranking

import (
	"context"
	"math"
	"testing"
)

func TestNewMMR(t *testing.T) {
	tests := []struct {
		name       string
		lambda     float64
		wantLambda float64
	}{
		{"normal value", 0.7, 0.7},
		{"zero value", 0.0, 0.0},
		{"one value", 1.0, 1.0},
		{"negative clamped to zero", -0.5, 0.0},
		{"above one clamped to one", 1.5, 1.0},
		{"nan falls back to default", math.NaN(), DefaultLambda},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mmr := NewMMR(tt.lambda)
			if mmr == nil {
				t.Fatal("NewMMR() returned nil")
			}
			if mmr.Lambda() != tt.wantLambda {
				t.Errorf("lambda = %f, want %f", mmr.Lambda(), tt.wantLambda)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	tests := []struct {
		name string
		want float64
	}{
		{"relevance", 0.8},
		{"Diversity", 0.2},
		{" balanced ", 0.5},
		{"unknown", DefaultLambda},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewMMRPreset(tt.name).Lambda(); got != tt.want {
				t.Errorf("lambda = %v, want %v", got, tt.want)
			}
		})
	}
	if _, ok := PresetLambda("unknown"); ok {
		t.Error("PresetLambda(unknown) should report false")
	}
}

func TestMMR_Name(t *testing.T) {
	mmr := NewMMR(0.7)
	if mmr.Name() != "mmr" {
		t.Errorf("Name() = %q, want %q", mmr.Name(), "mmr")
	}
}

// Three near-duplicates along x and two distinct directions.
func sampleItems() []Item {
	return []Item{
		{ID: "a1", Score: 1.0, Embedding: []float32{1, 0, 0}, Index: 0},
		{ID: "a2", Score: 0.95, Embedding: []float32{0.99, 0.1, 0}, Index: 1},
		{ID: "a3", Score: 0.9, Embedding: []float32{0.98, 0.15, 0}, Index: 2},
		{ID: "b", Score: 0.5, Embedding: []float32{0, 1, 0}, Index: 3},
		{ID: "c", Score: 0.4, Embedding: []float32{0, 0, 1}, Index: 4},
	}
}

func TestMMR_Rerank(t *testing.T) {
	items := sampleItems()

	tests := []struct {
		name    string
		lambda  float64
		k       int
		wantLen int
	}{
		{"pure relevance", 1.0, 3, 3},
		{"balanced", 0.5, 3, 3},
		{"pure diversity", 0.0, 4, 4},
		{"k larger than items", 0.7, 10, 5},
		{"k zero", 0.7, 0, 0},
		{"k negative", 0.7, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewMMR(tt.lambda).Rerank(context.Background(), items, tt.k)
			if len(result) != tt.wantLen {
				t.Fatalf("len(result) = %d, want %d", len(result), tt.wantLen)
			}
			seen := make(map[string]bool)
			for _, it := range result {
				if seen[it.ID] {
					t.Errorf("duplicate pick %s", it.ID)
				}
				seen[it.ID] = true
			}
			if tt.wantLen > 0 && result[0].ID != "a1" {
				t.Errorf("first pick = %s, want a1", result[0].ID)
			}
		})
	}
}

func TestMMR_Rerank_DiversityEffect(t *testing.T) {
	items := sampleItems()

	t.Run("pure relevance keeps score order", func(t *testing.T) {
		result := NewMMR(1.0).Rerank(context.Background(), items, 3)
		for i, want := range []string{"a1", "a2", "a3"} {
			if result[i].ID != want {
				t.Errorf("result[%d] = %s, want %s", i, result[i].ID, want)
			}
		}
	})

	t.Run("balanced skips near duplicates", func(t *testing.T) {
		result := NewMMR(0.5).Rerank(context.Background(), items, 3)
		// a2: 0.475 - 0.5*0.995; b: 0.25 - 0; c: 0.2 - 0
		if result[1].ID != "b" {
			t.Errorf("second pick = %s, want b", result[1].ID)
		}
		if result[2].ID != "c" {
			t.Errorf("third pick = %s, want c", result[2].ID)
		}
	})

	t.Run("indices carried through", func(t *testing.T) {
		result := NewMMR(0.5).Rerank(context.Background(), items, 2)
		if result[1].Index != 3 {
			t.Errorf("Index = %d, want 3", result[1].Index)
		}
	})
}

func TestMMR_Rerank_TiesKeepInputOrder(t *testing.T) {
	items := []Item{
		{ID: "x", Score: 0.5, Embedding: []float32{1, 0}},
		{ID: "y", Score: 0.5, Embedding: []float32{0, 1}},
		{ID: "z", Score: 0.5, Embedding: []float32{0, 1}},
	}
	result := NewMMR(0.5).Rerank(context.Background(), items, 3)
	got := []string{result[0].ID, result[1].ID, result[2].ID}
	want := []string{"x", "y", "z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestMMR_Rerank_EmptyInput(t *testing.T) {
	mmr := NewMMR(0.7)

	t.Run("nil items", func(t *testing.T) {
		if result := mmr.Rerank(context.Background(), nil, 5); len(result) != 0 {
			t.Errorf("expected empty result for nil input, got %d items", len(result))
		}
	})

	t.Run("missing embeddings", func(t *testing.T) {
		items := []Item{{ID: "a", Score: 0.2}, {ID: "b", Score: 0.9}}
		result := mmr.Rerank(context.Background(), items, 2)
		if len(result) != 2 || result[0].ID != "b" {
			t.Errorf("result = %+v", result)
		}
	})
}

func TestMMR_Rerank_SingleItem(t *testing.T) {
	items := []Item{{ID: "only", Score: 1.0, Embedding: []float32{1, 0}}}

	result := NewMMR(0.7).Rerank(context.Background(), items, 5)
	if len(result) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result))
	}
	if result[0].ID != "only" {
		t.Errorf("expected item only, got %s", result[0].ID)
	}
}
