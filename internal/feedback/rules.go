// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package feedback

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/idea"
)

// Feedback kinds.
const (
	KindRating  = "rating"
	KindCompare = "compare"
	KindReview  = "review"
)

// Star rating bounds. Three stars is neutral.
const (
	MinStars     = 1
	MaxStars     = 5
	neutralStars = 3
)

// eloAnchor is the opponent rating a review is scored against.
const eloAnchor = 1500

// fineTuneThreshold is the mean review relevance below which weights are
// nudged toward provenance and trend.
const fineTuneThreshold = 0.5

var (
	ErrInvalidRating     = errors.New("rating must be an integer from 1 to 5")
	ErrInvalidPreference = errors.New("preference must be A, B or equal")
	ErrInvalidReview     = errors.New("review dimensions must be finite values in [0, 1]")
	ErrSameIdea          = errors.New("comparison needs two different ideas")
	ErrUnknownKind       = errors.New("unknown feedback kind")
)

// Preference is the outcome of a pairwise comparison.
type Preference string

// Comparison outcomes.
const (
	PreferA     Preference = "A"
	PreferB     Preference = "B"
	PreferEqual Preference = "equal"
)

// ParsePreference accepts A, B or equal in any case.
func ParsePreference(s string) (Preference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a":
		return PreferA, nil
	case "b":
		return PreferB, nil
	case "equal", "=", "tie":
		return PreferEqual, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPreference, s)
}

// scores returns the actual scores of A and B.
func (p Preference) scores() (float64, float64) {
	switch p {
	case PreferA:
		return 1, 0
	case PreferB:
		return 0, 1
	default:
		return 0.5, 0.5
	}
}

// Review is a four-dimension assessment, each dimension in [0, 1].
type Review struct {
	Relevance   float64 `json:"relevance"`
	Novelty     float64 `json:"novelty"`
	Feasibility float64 `json:"feasibility"`
	Usefulness  float64 `json:"usefulness"`
}

// Validate rejects values outside [0, 1] and non-finite values.
func (r Review) Validate() error {
	for _, v := range []float64{r.Relevance, r.Novelty, r.Feasibility, r.Usefulness} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
			return ErrInvalidReview
		}
	}
	return nil
}

// Average is the mean of the four dimensions.
func (r Review) Average() float64 {
	return (r.Relevance + r.Novelty + r.Feasibility + r.Usefulness) / 4
}

// ValidateStars checks a star rating.
func ValidateStars(stars int) error {
	if stars < MinStars || stars > MaxStars {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, stars)
	}
	return nil
}

// Expected is the Elo expected score of a rated ra against rb.
func Expected(ra, rb float64) float64 {
	return 1 / (1 + math.Pow(10, (rb-ra)/400))
}

// Rules applies rating updates with the configured constants.
type Rules struct {
	cfg config.FeedbackConfig
}

// NewRules creates the rating rules.
func NewRules(cfg config.FeedbackConfig) Rules {
	return Rules{cfg: cfg}
}

func (r Rules) clampElo(x float64) float64 {
	return math.Max(r.cfg.EloMin, math.Min(r.cfg.EloMax, x))
}

// Rating maps stars to an Elo change of (stars-3)*StarStep. It returns the
// new state and the nominal change before clamping.
func (r Rules) Rating(m idea.MutableFields, stars int) (idea.MutableFields, float64) {
	change := float64(stars-neutralStars) * r.cfg.StarStep
	m.EloRating = r.clampElo(m.EloRating + change)
	return m, change
}

// Compare applies a standard Elo match between a and b.
func (r Rules) Compare(a, b idea.MutableFields, p Preference) (idea.MutableFields, idea.MutableFields) {
	ea := Expected(a.EloRating, b.EloRating)
	eb := Expected(b.EloRating, a.EloRating)
	sa, sb := p.scores()

	a.EloRating = r.clampElo(a.EloRating + r.cfg.EloK*(sa-ea))
	b.EloRating = r.clampElo(b.EloRating + r.cfg.EloK*(sb-eb))
	return a, b
}

// Review scores the review average as a match against a 1500-rated
// opponent, moves the Bayesian mean toward the average by the learning
// rate and decays uncertainty.
func (r Rules) Review(m idea.MutableFields, rev Review) idea.MutableFields {
	avg := rev.Average()
	expected := Expected(m.EloRating, eloAnchor)
	m.EloRating = r.clampElo(m.EloRating + r.cfg.EloK*(avg-expected))
	m.BayesianMean = (1-r.cfg.LearningRate)*m.BayesianMean + r.cfg.LearningRate*avg
	m.Uncertainty *= r.cfg.UncertaintyDecay
	return m
}

// FineTune boosts provenance and trend by 10% when mean review relevance
// is below one half, then renormalizes.
func FineTune(w idea.Weights, avgRelevance float64) idea.Weights {
	if avgRelevance < fineTuneThreshold {
		w = w.Scale(idea.Provenance, 1.1).Scale(idea.Trend, 1.1)
	}
	return w.Normalize()
}
