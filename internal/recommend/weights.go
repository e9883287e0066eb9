// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package recommend

import (
	"strings"

	"github.com/tomtom215/ideaforge/internal/features"
	"github.com/tomtom215/ideaforge/internal/idea"
)

// Ranking domains with their own weight adjustments.
const (
	DomainGeneral    = "general"
	DomainTechnology = "technology"
	DomainHealthcare = "healthcare"
	DomainFinance    = "finance"
)

// Adapter thresholds.
const (
	HighVolatility = 0.7
	LowDataQuality = 0.6
)

// RankingContext drives per-candidate weight adaptation.
type RankingContext struct {
	Domain      string
	Volatility  float64
	DataQuality float64
	Fairness    bool
	Bias        *features.BiasReport
}

// AdaptWeights applies the domain, volatility, data-quality, fairness and
// bias adjustments to base in that order, renormalizing after each stage.
// The result is non-negative and sums to 1.
func AdaptWeights(base idea.Weights, c RankingContext) idea.Weights {
	w := base.Normalize()

	switch strings.ToLower(c.Domain) {
	case DomainTechnology:
		w = w.Scale(idea.Trend, 1.3).Scale(idea.Serendipity, 1.4)
	case DomainHealthcare:
		w = w.Scale(idea.Provenance, 1.5).Scale(idea.Uncertainty, 1.3)
	case DomainFinance:
		w = w.Scale(idea.Provenance, 1.4).Scale(idea.Trend, 1.2)
	}
	w = w.Normalize()

	if c.Volatility > HighVolatility {
		w = w.Scale(idea.Trend, 1.3).Scale(idea.Freshness, 1.2).Scale(idea.Elo, 0.9).Normalize()
	}

	if c.DataQuality < LowDataQuality {
		w = w.Scale(idea.Provenance, 1.3).Scale(idea.Uncertainty, 1.4).Normalize()
	}

	if c.Fairness {
		w = w.Scale(idea.Serendipity, 1.3).Scale(idea.Provenance, 0.8).Normalize()
	}

	if c.Bias != nil && c.Bias.BiasDetected {
		w = features.Rebalance(w, *c.Bias)
	}
	return w
}

// domainFor picks the ranking domain: an explicit non-general configured
// domain wins, otherwise the first request tag naming a known domain.
func domainFor(configured string, tags []string) string {
	if d := strings.ToLower(strings.TrimSpace(configured)); d != "" && d != DomainGeneral {
		return d
	}
	for _, t := range tags {
		switch d := strings.ToLower(strings.TrimSpace(t)); d {
		case DomainTechnology, DomainHealthcare, DomainFinance:
			return d
		}
	}
	return DomainGeneral
}
