// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package features

import "strings"

type weightedKeyword struct {
	keyword string
	weight  float64
}

var trendKeywords = []weightedKeyword{
	{"ai", 0.9},
	{"blockchain", 0.7},
	{"sustainability", 0.8},
	{"cloud", 0.6},
	{"mobile", 0.5},
	{"iot", 0.7},
	{"automation", 0.8},
	{"analytics", 0.6},
	{"machine learning", 0.9},
	{"cryptocurrency", 0.7},
	{"quantum", 0.8},
	{"metaverse", 0.7},
	{"5g", 0.6},
	{"cybersecurity", 0.8},
}

// neutralTrend is returned when no trend keyword matches.
const neutralTrend = 0.5

// Trend returns the mean weight of trend keywords found as substrings of
// the lowercased text and tags, or 0.5 when none match.
func Trend(text string, tags []string) float64 {
	combined := strings.ToLower(text) + " " + strings.ToLower(strings.Join(tags, " "))
	var score float64
	var matches int
	for _, kw := range trendKeywords {
		if strings.Contains(combined, kw.keyword) {
			score += kw.weight
			matches++
		}
	}
	if matches == 0 {
		return neutralTrend
	}
	return Clamp(score/float64(matches), 0, 1)
}
