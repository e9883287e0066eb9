// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package recommend

import (
	"fmt"
	"sort"

	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/idea"
)

// TopFeatureCount is the number of contributions listed per result.
const TopFeatureCount = 5

// TopFeatures returns the n largest component*weight contributions in
// descending order. Equal contributions keep feature order.
func TopFeatures(c idea.Vector, w idea.Weights, n int) []Contribution {
	all := make([]Contribution, 0, idea.NumFeatures)
	for _, f := range idea.AllFeatures() {
		v, wt := c.Get(f), w[f]
		contrib := v * wt
		all = append(all, Contribution{
			Feature:      f.String(),
			Value:        v,
			Weight:       wt,
			Contribution: contrib,
			Explanation:  fmt.Sprintf("%s: %.3f × %.3f = %.3f", f, v, wt, contrib),
		})
	}
	sort.SliceStable(all, func(a, b int) bool {
		return all[a].Contribution > all[b].Contribution
	})
	if n >= 0 && n < len(all) {
		all = all[:n]
	}
	return all
}

// counterfactualSpec describes one perturbable feature.
type counterfactualSpec struct {
	feature idea.Feature
	delta   float64
	scale   float64
	phrase  string
}

// Counterfactuals estimates the rank improvement from bumping sentiment,
// trend and provenance. The estimates are int((new-current)*scale) with
// new capped at 1; they are illustrative and do not rerun the ranking.
func Counterfactuals(c idea.Vector, cfg config.RecommendConfig) []Counterfactual {
	specs := []counterfactualSpec{
		{idea.Sentiment, cfg.SentimentDelta, cfg.SentimentScale, "sentiment increased"},
		{idea.Trend, cfg.TrendDelta, cfg.TrendScale, "market trend score increased"},
		{idea.Provenance, cfg.ProvDelta, cfg.ProvScale, "data source quality improved"},
	}

	out := make([]Counterfactual, 0, len(specs))
	for _, s := range specs {
		cur := c.Get(s.feature)
		next := min(1.0, cur+s.delta)
		change := int((next - cur) * s.scale)
		out = append(out, Counterfactual{
			Feature:     s.feature.String(),
			Current:     cur,
			New:         next,
			Delta:       s.delta,
			RankChange:  change,
			Explanation: fmt.Sprintf("If %s by %v, rank would improve by ~%d positions", s.phrase, s.delta, change),
		})
	}
	return out
}

// Breakdown maps every feature to its value, weight, contribution and
// share of final. Shares are zero when final is not positive.
func Breakdown(c idea.Vector, w idea.Weights, final float64) map[string]BreakdownEntry {
	out := make(map[string]BreakdownEntry, idea.NumFeatures)
	for _, f := range idea.AllFeatures() {
		contrib := c.Get(f) * w[f]
		var pct float64
		if final > 0 {
			pct = contrib / final * 100
		}
		out[f.String()] = BreakdownEntry{
			Value:        c.Get(f),
			Weight:       w[f],
			Contribution: contrib,
			Percentage:   pct,
		}
	}
	return out
}

// Explain builds the full explanation for a scored candidate.
func Explain(s *Scored, cfg config.RecommendConfig) *Explanation {
	return &Explanation{
		TopFeatures:     TopFeatures(s.Components, s.Weights, TopFeatureCount),
		Counterfactuals: Counterfactuals(s.Components, cfg),
		Breakdown:       Breakdown(s.Components, s.Weights, s.Final),
	}
}
