// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package recommend

import (
	"sort"

	"github.com/tomtom215/ideaforge/internal/idea"
)

// viewWeights are the fixed per-view feature weights. Features a view does
// not name weigh zero.
var viewWeights = map[View]idea.Weights{
	ViewUser: {
		idea.Elo:          0.3,
		idea.BayesianMean: 0.3,
		idea.Sentiment:    0.2,
		idea.Freshness:    0.2,
	},
	ViewMarket: {
		idea.Trend:        0.4,
		idea.Provenance:   0.3,
		idea.CausalImpact: 0.3,
	},
	ViewSwot: {
		idea.BayesianMean: 0.25,
		idea.Uncertainty:  0.15,
		idea.Provenance:   0.3,
		idea.CausalImpact: 0.3,
	},
}

// ViewWeights returns the weights of a named view; consensus and unknown
// views use the user view.
func ViewWeights(v View) idea.Weights {
	if w, ok := viewWeights[v]; ok {
		return w
	}
	return viewWeights[ViewUser]
}

// ViewScore is the view-weighted sum of the components.
func ViewScore(v View, c idea.Vector) float64 {
	return c.Dot(ViewWeights(v))
}

// RankByView returns the indices of components ordered by descending view
// score. Equal scores keep input order.
func RankByView(v View, components []idea.Vector) []int {
	scores := make([]float64, len(components))
	for i, c := range components {
		scores[i] = ViewScore(v, c)
	}
	return order(scores)
}

// BlendViews combines per-view score lists aligned by candidate index. A
// nil or mismatched weight list blends every view equally.
func BlendViews(perView [][]float64, weights []float64) []float64 {
	if len(perView) == 0 {
		return nil
	}
	if len(weights) != len(perView) {
		weights = make([]float64, len(perView))
		for i := range weights {
			weights[i] = 1 / float64(len(perView))
		}
	}

	out := make([]float64, len(perView[0]))
	for v, scores := range perView {
		for i := range out {
			if i < len(scores) {
				out[i] += weights[v] * scores[i]
			}
		}
	}
	return out
}

// order returns indices sorted by descending score, stable on ties.
func order(scores []float64) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	return idx
}
