// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package features

import (
	"strings"

	"github.com/tomtom215/ideaforge/internal/idea"
)

// Bias thresholds.
const (
	SourceImbalanceThreshold     = 0.7
	DomainConcentrationThreshold = 0.6
)

// BiasReport summarizes corpus-level bias signals.
type BiasReport struct {
	BiasDetected        bool     `json:"bias_detected"`
	SourceImbalance     float64  `json:"source_imbalance"`
	DomainConcentration float64  `json:"domain_concentration"`
	Recommendations     []string `json:"recommendations"`
}

// DetectBias measures the share of high-provenance ideas and the share of
// the most common tag.
func DetectBias(ideas []*idea.Idea) BiasReport {
	r := BiasReport{Recommendations: []string{}}
	if len(ideas) == 0 {
		return r
	}

	var highProv, totalTags, maxTag int
	counts := make(map[string]int)
	for _, i := range ideas {
		if i.ProvenanceScore > SourceImbalanceThreshold {
			highProv++
		}
		for _, t := range i.Tags {
			counts[t]++
			totalTags++
			if counts[t] > maxTag {
				maxTag = counts[t]
			}
		}
	}
	r.SourceImbalance = float64(highProv) / float64(len(ideas))
	if totalTags > 0 {
		r.DomainConcentration = float64(maxTag) / float64(totalTags)
	}
	r.BiasDetected = r.SourceImbalance > SourceImbalanceThreshold ||
		r.DomainConcentration > DomainConcentrationThreshold
	if r.BiasDetected {
		r.Recommendations = []string{
			"Increase diversity in data sources",
			"Balance representation across domains",
		}
	}
	return r
}

// Rebalance dampens provenance and boosts serendipity for each bias signal
// above its threshold, renormalizing after every stage.
func Rebalance(w idea.Weights, r BiasReport) idea.Weights {
	if !r.BiasDetected {
		return w
	}
	if r.SourceImbalance > SourceImbalanceThreshold {
		w = w.Scale(idea.Provenance, 0.7).Scale(idea.Serendipity, 1.3).Normalize()
	}
	if r.DomainConcentration > DomainConcentrationThreshold {
		w = w.Scale(idea.Serendipity, 1.4).Normalize()
	}
	return w.Normalize()
}

// IsAdversarial flags spam-like input: a repetitive long description,
// implausibly perfect sentiment and trend, or a near-empty description.
func IsAdversarial(description string, sentiment, trend float64) bool {
	words := strings.Fields(strings.ToLower(description))
	if len(words) > 10 {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		if float64(len(unique))/float64(len(words)) < 0.3 {
			return true
		}
	}
	if sentiment > 0.95 && trend > 0.95 {
		return true
	}
	return len(strings.TrimSpace(description)) < 20
}
