// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package evaluation computes ranking quality metrics, cross-validation
// summaries and meta-learned weight searches, and renders evaluation
// reports.
package evaluation

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

var (
	// ErrEmptyRankings is returned when the ranked or ground-truth list is empty.
	ErrEmptyRankings = errors.New("empty rankings")

	// ErrInvalidFolds is returned when there are fewer items than folds.
	ErrInvalidFolds = errors.New("not enough ideas for cross-validation")

	// ErrCrossValidationFailed is returned when no fold could be evaluated.
	ErrCrossValidationFailed = errors.New("cross-validation failed")
)

// DefaultKValues are the cutoffs used when none are given.
var DefaultKValues = []int{5, 10, 20}

// AtK maps a cutoff K to a metric value. It encodes as {"@5": ..}.
type AtK map[int]float64

// Keys returns the cutoffs in ascending order.
func (a AtK) Keys() []int {
	ks := make([]int, 0, len(a))
	for k := range a {
		ks = append(ks, k)
	}
	sort.Ints(ks)
	return ks
}

// MarshalJSON implements json.Marshaler.
func (a AtK) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, len(a))
	for k, v := range a {
		m["@"+strconv.Itoa(k)] = v
	}
	return json.Marshal(m)
}

// Metrics is the full result of evaluating one ranking.
type Metrics struct {
	NDCG          AtK       `json:"ndcg"`
	Precision     AtK       `json:"precision"`
	Recall        AtK       `json:"recall"`
	F1            AtK       `json:"f1"`
	Diversity     float64   `json:"diversity"`
	FairnessIndex float64   `json:"fairness_index"`
	Coverage      float64   `json:"coverage"`
	Timestamp     time.Time `json:"timestamp"`
}

// Evaluate scores ranked against the ideal ordering truth at each cutoff
// in kValues (DefaultKValues when empty). Cutoffs are clamped to
// [1, len(ranked)].
func Evaluate(ranked, truth []string, kValues []int) (Metrics, error) {
	if len(ranked) == 0 || len(truth) == 0 {
		return Metrics{}, ErrEmptyRankings
	}
	if len(kValues) == 0 {
		kValues = DefaultKValues
	}

	m := Metrics{
		NDCG:          AtK{},
		Precision:     AtK{},
		Recall:        AtK{},
		F1:            AtK{},
		Diversity:     Diversity(ranked),
		FairnessIndex: Fairness(len(ranked)),
		Coverage:      Coverage(ranked, truth),
		Timestamp:     time.Now().UTC(),
	}
	for _, k := range kValues {
		k = max(1, min(len(ranked), k))
		p := Precision(ranked, truth, k)
		r := Recall(ranked, truth, k)
		m.NDCG[k] = NDCG(ranked, truth, k)
		m.Precision[k] = p
		m.Recall[k] = r
		m.F1[k] = f1(p, r)
	}
	return m, nil
}

// NDCG computes nDCG@k with graded relevance len(truth)-index_in_truth and
// a log2(rank+2) discount. k is capped by both list lengths.
func NDCG(ranked, truth []string, k int) float64 {
	k = min(k, len(ranked), len(truth))
	if k <= 0 {
		return 0
	}
	pos := firstIndex(truth)

	var dcg, idcg float64
	for i := 0; i < k; i++ {
		disc := math.Log2(float64(i + 2))
		if j, ok := pos[ranked[i]]; ok {
			dcg += float64(len(truth)-j) / disc
		}
		idcg += float64(len(truth)-i) / disc
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// Precision is the fraction of the first k ranked ids found in truth.
func Precision(ranked, truth []string, k int) float64 {
	k = min(k, len(ranked))
	if k <= 0 {
		return 0
	}
	return float64(hits(ranked[:k], truth)) / float64(k)
}

// Recall is the number of truth ids among the first k ranked, over len(truth).
func Recall(ranked, truth []string, k int) float64 {
	k = min(k, len(ranked))
	if k <= 0 || len(truth) == 0 {
		return 0
	}
	return float64(hits(ranked[:k], truth)) / float64(len(truth))
}

// Diversity is the ratio of unique ids; 0 for lists of length 0 or 1.
func Diversity(ranked []string) float64 {
	if len(ranked) <= 1 {
		return 0
	}
	seen := make(map[string]struct{}, len(ranked))
	for _, id := range ranked {
		seen[id] = struct{}{}
	}
	return float64(len(seen)) / float64(len(ranked))
}

// Fairness is 1 - Gini over the rank positions 1..n, clipped to [0,1].
// The pairwise sum over positions 1..n has the closed form n(n^2-1)/3, so
// Gini reduces to (n-1)/(3n).
func Fairness(n int) float64 {
	if n <= 0 {
		return 0
	}
	fn := float64(n)
	mean := (fn + 1) / 2
	absDiff := fn * (fn*fn - 1) / 3
	gini := absDiff / (2 * fn * fn * mean)
	return math.Max(0, math.Min(1, 1-gini))
}

// Coverage is the fraction of truth ids that appear anywhere in ranked.
func Coverage(ranked, truth []string) float64 {
	if len(truth) == 0 {
		return 0
	}
	in := make(map[string]struct{}, len(ranked))
	for _, id := range ranked {
		in[id] = struct{}{}
	}
	var n int
	for _, id := range truth {
		if _, ok := in[id]; ok {
			n++
		}
	}
	return float64(n) / float64(len(truth))
}

func f1(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

func hits(ranked, truth []string) int {
	set := make(map[string]struct{}, len(truth))
	for _, id := range truth {
		set[id] = struct{}{}
	}
	var n int
	for _, id := range ranked {
		if _, ok := set[id]; ok {
			n++
		}
	}
	return n
}

func firstIndex(ids []string) map[string]int {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, ok := pos[id]; !ok {
			pos[id] = i
		}
	}
	return pos
}
