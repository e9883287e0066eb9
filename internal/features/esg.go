// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package features

import "strings"

var (
	esgEnvironmental = []string{"climate", "carbon", "renewable", "sustainable", "green", "eco"}
	esgSocial        = []string{"equity", "diversity", "inclusion", "community", "fair", "ethical"}
	esgGovernance    = []string{"transparency", "compliance", "accountability", "integrity", "audit"}
)

// DefaultESGWeight is the default share of the final score taken by ESG.
const DefaultESGWeight = 0.15

// ESG holds per-category sustainability scores in [0, 1].
type ESG struct {
	Environmental float64 `json:"environmental"`
	Social        float64 `json:"social"`
	Governance    float64 `json:"governance"`
	Total         float64 `json:"total_esg"`
}

// ScoreESG counts category keywords (substring match) in title and
// description. Each category is min(1, count/3); Total is their mean.
func ScoreESG(title, description string) ESG {
	text := strings.ToLower(title + " " + description)
	e := categoryScore(text, esgEnvironmental)
	s := categoryScore(text, esgSocial)
	g := categoryScore(text, esgGovernance)
	return ESG{Environmental: e, Social: s, Governance: g, Total: (e + s + g) / 3}
}

func categoryScore(text string, keywords []string) float64 {
	var n int
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return Clamp(float64(n)/3, 0, 1)
}

// BlendESG mixes an ESG total into a score: score*(1-w) + total*w.
func BlendESG(score, total, w float64) float64 {
	return score*(1-w) + total*w
}
