// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package reranking

import (
	"context"
	"math"
	"strings"

	"github.com/tomtom215/ideaforge/internal/features"
)

// maxRerankSize limits slice allocations; k is also bounded by len(items).
const maxRerankSize = 10000

// DefaultLambda is the balanced relevance/diversity tradeoff.
const DefaultLambda = 0.5

// Lambda presets.
const (
	PresetRelevance = "relevance"
	PresetBalanced  = "balanced"
	PresetDiversity = "diversity"
)

var presets = map[string]float64{
	PresetRelevance: 0.8,
	PresetBalanced:  0.5,
	PresetDiversity: 0.2,
}

// PresetLambda returns the lambda for a named preset.
func PresetLambda(name string) (float64, bool) {
	l, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	return l, ok
}

// Item is one rerankable entry. Index is the caller's position for the
// item and is carried through unchanged.
type Item struct {
	ID        string
	Score     float64
	Embedding []float32
	Index     int
}

// MMR implements Maximal Marginal Relevance reranking over embedding
// cosine similarity.
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	// Lambda balances relevance vs. diversity (0.0 to 1.0)
	lambda float64
}

// NewMMR creates a new MMR reranker with lambda clamped to [0, 1].
// NaN falls back to DefaultLambda.
func NewMMR(lambda float64) *MMR {
	if math.IsNaN(lambda) {
		lambda = DefaultLambda
	}
	return &MMR{lambda: features.Clamp(lambda, 0, 1)}
}

// NewMMRPreset creates an MMR reranker from a preset name, falling back to
// the balanced lambda for unknown names.
func NewMMRPreset(name string) *MMR {
	l, ok := PresetLambda(name)
	if !ok {
		l = DefaultLambda
	}
	return NewMMR(l)
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Lambda returns the configured tradeoff.
func (m *MMR) Lambda() float64 {
	return m.lambda
}

// Rerank selects min(k, len(items)) unique items. The first pick is the
// highest-scoring item; later picks maximize the MMR objective. Ties keep
// input order.
func (m *MMR) Rerank(_ context.Context, items []Item, k int) []Item {
	if len(items) == 0 || k <= 0 {
		return nil
	}
	k = min(k, len(items), maxRerankSize)

	selected := make([]Item, 0, k)
	taken := make([]bool, len(items))
	maxSim := make([]float64, len(items))
	for i := range maxSim {
		maxSim[i] = math.Inf(-1)
	}

	first := 0
	for i := 1; i < len(items); i++ {
		if items[i].Score > items[first].Score {
			first = i
		}
	}
	selected = append(selected, items[first])
	taken[first] = true

	for len(selected) < k {
		last := selected[len(selected)-1]

		bestIdx := -1
		bestMMR := math.Inf(-1)
		for i, item := range items {
			if taken[i] {
				continue
			}
			maxSim[i] = math.Max(maxSim[i], features.Cosine(item.Embedding, last.Embedding))

			mmrScore := m.lambda*item.Score - (1-m.lambda)*maxSim[i]
			if mmrScore > bestMMR {
				bestMMR = mmrScore
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}
		selected = append(selected, items[bestIdx])
		taken[bestIdx] = true
	}

	return selected
}
