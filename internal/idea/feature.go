// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package idea

import (
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"
)

// Feature names one component of the linear ranking score.
type Feature int

const (
	Elo Feature = iota
	BayesianMean
	Uncertainty
	Sentiment
	Provenance
	Freshness
	Trend
	CausalImpact
	Serendipity

	NumFeatures
)

var featureNames = [NumFeatures]string{
	Elo:          "elo",
	BayesianMean: "bayesian_mean",
	Uncertainty:  "uncertainty",
	Sentiment:    "sentiment",
	Provenance:   "provenance",
	Freshness:    "freshness",
	Trend:        "trend",
	CausalImpact: "causal_impact",
	Serendipity:  "serendipity",
}

// featureAliases accepts the short names used by federated feedback and
// scenario multipliers.
var featureAliases = map[string]Feature{
	"bayesian": BayesianMean,
	"causal":   CausalImpact,
}

// AllFeatures lists every feature in canonical order.
func AllFeatures() []Feature {
	fs := make([]Feature, NumFeatures)
	for i := range fs {
		fs[i] = Feature(i)
	}
	return fs
}

func (f Feature) String() string {
	if f < 0 || f >= NumFeatures {
		return fmt.Sprintf("feature(%d)", int(f))
	}
	return featureNames[f]
}

// ParseFeature resolves a feature name or alias.
func ParseFeature(name string) (Feature, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range featureNames {
		if n == name {
			return Feature(i), true
		}
	}
	f, ok := featureAliases[name]
	return f, ok
}

// Vector holds one value per feature.
type Vector [NumFeatures]float64

// Get returns the value for f.
func (v Vector) Get(f Feature) float64 { return v[f] }

// Set assigns the value for f.
func (v *Vector) Set(f Feature, x float64) { v[f] = x }

// Dot returns the feature-wise weighted sum.
func (v Vector) Dot(w Weights) float64 {
	var s float64
	for i := range v {
		s += v[i] * w[i]
	}
	return s
}

// Map returns the vector keyed by feature name.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, NumFeatures)
	for i, x := range v {
		m[featureNames[i]] = x
	}
	return m
}

// Weights is a non-negative weight per feature. Normalized weights sum to 1.
type Weights [NumFeatures]float64

// DefaultWeights returns the base weight map.
func DefaultWeights() Weights {
	return Weights{
		Elo:          0.15,
		BayesianMean: 0.15,
		Uncertainty:  0.05,
		Sentiment:    0.10,
		Provenance:   0.10,
		Freshness:    0.10,
		Trend:        0.15,
		CausalImpact: 0.10,
		Serendipity:  0.10,
	}
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	var s float64
	for _, x := range w {
		s += x
	}
	return s
}

// Normalize returns a copy scaled to sum to 1. Negative and non-finite
// entries become 0; an all-zero map becomes uniform.
func (w Weights) Normalize() Weights {
	var out Weights
	var total float64
	for i, x := range w {
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			x = 0
		}
		out[i] = x
		total += x
	}
	if total == 0 {
		for i := range out {
			out[i] = 1.0 / float64(NumFeatures)
		}
		return out
	}
	for i := range out {
		out[i] /= total
	}
	return out
}

// Scale returns a copy with w[f] multiplied by factor. It does not renormalize.
func (w Weights) Scale(f Feature, factor float64) Weights {
	w[f] *= factor
	return w
}

// Map returns the weights keyed by feature name.
func (w Weights) Map() map[string]float64 {
	m := make(map[string]float64, NumFeatures)
	for i, x := range w {
		m[featureNames[i]] = x
	}
	return m
}

// WeightsFromMap builds weights from a name-keyed map. Unknown names are
// ignored and missing features take the value of fill.
func WeightsFromMap(m map[string]float64, fill float64) Weights {
	var w Weights
	for i := range w {
		w[i] = fill
	}
	for k, v := range m {
		if f, ok := ParseFeature(k); ok {
			w[f] = v
		}
	}
	return w
}

// MarshalJSON encodes weights as a name-keyed object.
func (w Weights) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Map())
}

// UnmarshalJSON decodes a name-keyed object. Missing features are zero.
func (w *Weights) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*w = WeightsFromMap(m, 0)
	return nil
}
