// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package features

import "strings"

var positiveWords = wordSet(
	"good", "great", "excellent", "amazing", "innovative", "revolutionary",
	"powerful", "efficient", "valuable", "useful", "profitable", "success",
	"opportunity", "growth", "strong", "quality", "benefit", "advantage",
)

var negativeWords = wordSet(
	"bad", "poor", "terrible", "weak", "risky", "expensive", "difficult",
	"complex", "failing", "loss", "problem", "issue", "threat", "danger",
)

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// Sentiment returns lexicon polarity in [-1, 1]: (pos-neg)/(pos+neg) over
// whitespace-separated lowercase words, or 0 when no lexicon word occurs.
func Sentiment(text string) float64 {
	var pos, neg int
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if _, ok := positiveWords[w]; ok {
			pos++
		}
		if _, ok := negativeWords[w]; ok {
			neg++
		}
	}
	total := pos + neg
	if total == 0 {
		return 0
	}
	return Clamp(float64(pos-neg)/float64(total), -1, 1)
}
