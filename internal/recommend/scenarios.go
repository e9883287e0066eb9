// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package recommend

import (
	"github.com/tomtom215/ideaforge/internal/idea"
)

// Scenario is a named set of weight multipliers applied to base weights.
type Scenario struct {
	Name        string
	Multipliers map[idea.Feature]float64
}

// DefaultScenarios are the what-if rankings reported alongside the base.
var DefaultScenarios = []Scenario{
	{Name: "base"},
	{Name: "sentiment_heavy", Multipliers: map[idea.Feature]float64{idea.Sentiment: 2}},
	{Name: "trend_heavy", Multipliers: map[idea.Feature]float64{idea.Trend: 2}},
	{Name: "diversity_heavy", Multipliers: map[idea.Feature]float64{idea.Serendipity: 3}},
}

// SensitivityDeltas are the relative weight perturbations tried per feature.
var SensitivityDeltas = []float64{-0.2, -0.1, 0, 0.1, 0.2}

// ScenarioEntry is one ranked idea in a scenario.
type ScenarioEntry struct {
	ID    string  `json:"idea_id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// ScenarioResult is the ranking produced under one scenario.
type ScenarioResult struct {
	Name    string          `json:"name"`
	Weights idea.Weights    `json:"weights"`
	Ranking []ScenarioEntry `json:"ranking"`
}

// Comparison reports pairwise rank correlation between scenarios.
type Comparison struct {
	Scenarios          []string           `json:"scenarios"`
	Correlations       map[string]float64 `json:"correlations"`
	AverageCorrelation float64            `json:"average_correlation"`
}

// SensitivityPoint is the outcome of one weight perturbation.
type SensitivityPoint struct {
	Delta    float64  `json:"delta"`
	Top5     []string `json:"top_5"`
	AvgScore float64  `json:"avg_score"`
}

// ScenarioReport bundles scenario rankings, their comparison and an
// optional sensitivity sweep.
type ScenarioReport struct {
	Scenarios   []ScenarioResult   `json:"scenarios"`
	Comparison  Comparison         `json:"comparison"`
	Feature     string             `json:"feature,omitempty"`
	Sensitivity []SensitivityPoint `json:"sensitivity,omitempty"`
}

// ScenarioWeights multiplies base by the given factors and renormalizes.
func ScenarioWeights(base idea.Weights, mult map[idea.Feature]float64) idea.Weights {
	w := base
	for f, m := range mult {
		w = w.Scale(f, m)
	}
	return w.Normalize()
}

// RunScenario ranks ideas by components . scenario weights. ideas and
// components are aligned by index.
func RunScenario(s Scenario, base idea.Weights, ideas []*idea.Idea, components []idea.Vector) ScenarioResult {
	w := ScenarioWeights(base, s.Multipliers)
	scores := make([]float64, len(components))
	for i, c := range components {
		scores[i] = c.Dot(w)
	}

	res := ScenarioResult{Name: s.Name, Weights: w, Ranking: make([]ScenarioEntry, 0, len(ideas))}
	for _, i := range order(scores) {
		res.Ranking = append(res.Ranking, ScenarioEntry{ID: ideas[i].ID, Title: ideas[i].Title, Score: scores[i]})
	}
	return res
}

// CompareScenarios computes 1 - 2*inversions/pairs for every pair of
// results, counting only ideas present in both rankings.
func CompareScenarios(results []ScenarioResult) Comparison {
	c := Comparison{Scenarios: make([]string, len(results)), Correlations: map[string]float64{}}
	for i, r := range results {
		c.Scenarios[i] = r.Name
	}

	var sum float64
	for i := range results {
		for j := i + 1; j < len(results); j++ {
			corr := rankCorrelation(results[i].Ranking, results[j].Ranking)
			c.Correlations[results[i].Name+"_vs_"+results[j].Name] = corr
			sum += corr
		}
	}
	if len(c.Correlations) > 0 {
		c.AverageCorrelation = sum / float64(len(c.Correlations))
	}
	return c
}

func rankCorrelation(a, b []ScenarioEntry) float64 {
	pos := make(map[string]int, len(b))
	for i, e := range b {
		pos[e.ID] = i
	}
	var inversions int
	for i := range a {
		pi, ok := pos[a[i].ID]
		if !ok {
			continue
		}
		for j := i + 1; j < len(a); j++ {
			if pj, ok := pos[a[j].ID]; ok && pi > pj {
				inversions++
			}
		}
	}
	pairs := float64(len(a)*(len(a)-1)) / 2
	if pairs == 0 {
		return 1
	}
	return 1 - 2*float64(inversions)/pairs
}

// Sensitivity reranks with feature's weight scaled by 1+delta for each of
// SensitivityDeltas.
func Sensitivity(f idea.Feature, base idea.Weights, ideas []*idea.Idea, components []idea.Vector) []SensitivityPoint {
	out := make([]SensitivityPoint, 0, len(SensitivityDeltas))
	for _, d := range SensitivityDeltas {
		res := RunScenario(Scenario{Multipliers: map[idea.Feature]float64{f: 1 + d}}, base, ideas, components)

		p := SensitivityPoint{Delta: d, Top5: []string{}}
		var sum float64
		for i, e := range res.Ranking {
			if i < 5 {
				p.Top5 = append(p.Top5, e.ID)
			}
			sum += e.Score
		}
		if len(res.Ranking) > 0 {
			p.AvgScore = sum / float64(len(res.Ranking))
		}
		out = append(out, p)
	}
	return out
}
