// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package features

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/ideaforge/internal/idea"
)

// CausalSignificance is the minimum |r| for a feature to count as a driver.
const CausalSignificance = 0.3

// Causal model input errors.
var (
	ErrCausalEmpty     = errors.New("features and outcomes cannot be empty")
	ErrCausalLength    = errors.New("all features and outcomes must have the same length")
	ErrCausalNonFinite = errors.New("feature contains non-finite values")
)

// Causal feature names.
const (
	CausalSentiment  = "sentiment"
	CausalTrend      = "trend"
	CausalElo        = "elo"
	CausalProvenance = "provenance"
)

// CausalInputs returns the feature values the causal model is fitted on.
func CausalInputs(i *idea.Idea) map[string]float64 {
	return map[string]float64{
		CausalSentiment:  i.Sentiment,
		CausalTrend:      i.TrendScore,
		CausalElo:        i.EloRating / idea.DefaultElo,
		CausalProvenance: i.ProvenanceScore,
	}
}

// CausalPath is one feature's contribution to an idea's causal impact.
type CausalPath struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Strength     float64 `json:"causal_strength"`
	Contribution float64 `json:"contribution"`
	Explanation  string  `json:"explanation"`
}

// CausalExplanation lists the strongest causal paths for one idea.
type CausalExplanation struct {
	IdeaID      string       `json:"idea_id"`
	Paths       []CausalPath `json:"causal_paths"`
	TotalImpact float64      `json:"total_causal_impact"`
	Confidence  float64      `json:"causal_confidence"`
}

// CausalModel treats the Pearson correlation magnitude between a feature
// and the observed outcome as that feature's causal strength. It is a
// correlational approximation and makes no stronger claim.
type CausalModel struct {
	mu       sync.RWMutex
	effects  map[string]float64
	drivers  []string
	samples  int
	fittedAt time.Time
}

// NewCausalModel returns an unfitted model.
func NewCausalModel() *CausalModel {
	return &CausalModel{effects: map[string]float64{}}
}

// Fit replaces the model with correlations computed from features and
// outcomes. Features with zero variance are skipped.
func (m *CausalModel) Fit(features map[string][]float64, outcomes []float64) error {
	if len(features) == 0 || len(outcomes) == 0 {
		return ErrCausalEmpty
	}
	for name, values := range features {
		if len(values) != len(outcomes) {
			return fmt.Errorf("%w: %s has %d values, outcomes has %d", ErrCausalLength, name, len(values), len(outcomes))
		}
		for _, v := range values {
			if !finite(v) {
				return fmt.Errorf("%w: %s", ErrCausalNonFinite, name)
			}
		}
	}
	for _, v := range outcomes {
		if !finite(v) {
			return fmt.Errorf("%w: outcome", ErrCausalNonFinite)
		}
	}

	effects := make(map[string]float64, len(features))
	var drivers []string
	for name, values := range features {
		r, ok := pearson(values, outcomes)
		if !ok {
			continue
		}
		effects[name] = math.Abs(r)
		if math.Abs(r) > CausalSignificance {
			drivers = append(drivers, name)
		}
	}
	sort.Strings(drivers)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.effects = effects
	m.drivers = drivers
	m.samples = len(outcomes)
	m.fittedAt = time.Now().UTC()
	return nil
}

func pearson(x, y []float64) (float64, bool) {
	n := float64(len(x))
	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= n
	my /= n
	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}

// Fitted reports whether Fit has succeeded at least once.
func (m *CausalModel) Fitted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.samples > 0
}

// Samples returns the number of observations of the last fit.
func (m *CausalModel) Samples() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.samples
}

// Drivers returns features whose |r| exceeds CausalSignificance.
func (m *CausalModel) Drivers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.drivers...)
}

// Effect returns the causal strength of feature in [0, 1].
func (m *CausalModel) Effect(feature string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Clamp(m.effects[feature], 0, 1)
}

// Explain sums effect*value over significant features and returns the top
// five paths by contribution.
func (m *CausalModel) Explain(ideaID string, values map[string]float64) CausalExplanation {
	if len(ideaID) > 100 {
		ideaID = ideaID[:100]
	}
	out := CausalExplanation{IdeaID: ideaID, Paths: []CausalPath{}}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := values[name]
		if !finite(v) {
			continue
		}
		effect := m.Effect(name)
		if effect <= CausalSignificance {
			continue
		}
		contribution := effect * v
		out.TotalImpact += contribution
		out.Paths = append(out.Paths, CausalPath{
			Feature:      name,
			Value:        v,
			Strength:     effect,
			Contribution: contribution,
			Explanation:  fmt.Sprintf("%s causally contributes %.3f to outcome", name, contribution),
		})
	}
	sort.SliceStable(out.Paths, func(i, j int) bool {
		return out.Paths[i].Contribution > out.Paths[j].Contribution
	})
	if len(out.Paths) > 5 {
		out.Paths = out.Paths[:5]
	}
	out.Confidence = Clamp(out.TotalImpact, 0, 1)
	return out
}

// ImpactScore squashes the total causal impact with s/(1+s) into [0, 1].
func (m *CausalModel) ImpactScore(values map[string]float64) float64 {
	s := m.Explain("", values).TotalImpact
	return Clamp(s/(1+s), 0, 1)
}
