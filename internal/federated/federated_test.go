// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package federated

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/tomtom215/ideaforge/internal/config"
)

func noiselessManager() *Manager {
	return NewManagerWithSource(config.FederatedConfig{NoiseScale: 0, Epsilon: 1}, rand.NewPCG(1, 2))
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestValidateWeights(t *testing.T) {
	got := ValidateWeights(map[string]float64{
		"elo":   1.7,
		"trend": -0.2,
		"nan":   math.NaN(),
		"inf":   math.Inf(1),
		"ok":    0.3,
	})
	want := map[string]float64{"elo": 1, "trend": 0, "nan": 0.5, "inf": 0.5, "ok": 0.3}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestMaskRoundTrip(t *testing.T) {
	w := map[string]float64{"elo": 0.123456, "trend": 0.9, "provenance": 0}
	masked := mask(w, hashUser("alice"))
	if masked["trend"] == 900000 {
		t.Error("value was not masked")
	}
	back := unmask(masked, hashUser("alice"))
	for k, v := range w {
		if !approx(back[k], v) {
			t.Errorf("%s = %v, want %v", k, back[k], v)
		}
	}
}

func TestAggregateMethods(t *testing.T) {
	tests := []struct {
		method string
		want   float64
	}{
		{MethodFedAvg, (0.1 + 0.2 + 0.9) / 3},
		{MethodMedian, 0.2},
		{MethodTrimmedMean, (0.1 + 0.2 + 0.9) / 3},
		{"bogus", (0.1 + 0.2 + 0.9) / 3},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			m := noiselessManager()
			for i, v := range []float64{0.1, 0.2, 0.9} {
				m.Collect(string(rune('a'+i)), map[string]float64{"elo": v}, i%2 == 0)
			}
			got := m.Aggregate(tt.method)
			if !approx(got["elo"], tt.want) {
				t.Errorf("elo = %v, want %v", got["elo"], tt.want)
			}
			if m.Pending() != 0 {
				t.Errorf("Pending = %d, want 0", m.Pending())
			}
			if len(m.History()) != 1 {
				t.Errorf("History len = %d, want 1", len(m.History()))
			}
		})
	}
}

func TestAggregateMissingKeys(t *testing.T) {
	m := noiselessManager()
	m.Collect("a", map[string]float64{"elo": 1}, false)
	m.Collect("b", map[string]float64{"trend": 0}, false)

	got := m.Aggregate(MethodFedAvg)
	if !approx(got["elo"], 0.75) || !approx(got["trend"], 0.25) {
		t.Errorf("got %v, want elo .75 trend .25", got)
	}
}

func TestTrimmedMeanDropsOutliers(t *testing.T) {
	vals := []float64{0, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 1}
	if got := trimmedMean(vals); !approx(got, 0.5) {
		t.Errorf("trimmedMean = %v, want 0.5", got)
	}
}

func TestAggregateEmptyKeepsGlobal(t *testing.T) {
	m := noiselessManager()
	if got := m.Aggregate(""); len(got) != 0 {
		t.Errorf("empty aggregate = %v", got)
	}
	if len(m.History()) != 0 {
		t.Error("empty aggregate should not record a round")
	}
}

func TestNoiseStaysInRange(t *testing.T) {
	m := NewManagerWithSource(config.FederatedConfig{NoiseScale: 1, Epsilon: 0.1}, rand.NewPCG(7, 7))
	for i := 0; i < 50; i++ {
		m.Collect("u", map[string]float64{"elo": 0.5, "trend": 1}, false)
	}
	for _, u := range m.pending {
		for k, v := range u.Weights {
			if v < 0 || v > 1 {
				t.Fatalf("%s = %v outside [0,1]", k, v)
			}
		}
	}
}

func TestApplyGlobal(t *testing.T) {
	cur := map[string]float64{"elo": 0.2, "trend": 0.4}
	global := map[string]float64{"elo": 0.6}

	tests := []struct {
		lr       float64
		wantElo  float64
		wantTren float64
	}{
		{0.5, 0.4, 0.4},
		{0, 0.2, 0.4},
		{2, 0.6, 0.4},
		{-1, 0.2, 0.4},
	}
	for _, tt := range tests {
		got := ApplyGlobal(cur, global, tt.lr)
		if !approx(got["elo"], tt.wantElo) || !approx(got["trend"], tt.wantTren) {
			t.Errorf("lr=%v: got %v", tt.lr, got)
		}
	}

	if got := ApplyGlobal(cur, nil, 0.5); got["elo"] != 0.2 {
		t.Errorf("no global: elo = %v, want 0.2", got["elo"])
	}
}

func TestFeedbackToWeights(t *testing.T) {
	neutral := FeedbackToWeights(nil)
	var sum float64
	for _, v := range neutral {
		sum += v
	}
	if !approx(sum, 1) {
		t.Errorf("sum = %v, want 1", sum)
	}
	if !approx(neutral["elo"], 0.15) {
		t.Errorf("neutral elo = %v, want 0.15", neutral["elo"])
	}

	high := FeedbackToWeights(map[string]float64{"a": 1, "b": 1})
	if high["uncertainty"] <= neutral["uncertainty"] {
		t.Error("positive feedback should raise the smallest weights")
	}
}

func TestUserHashAndClamping(t *testing.T) {
	if got := len(hashUser("x")); got != 16 {
		t.Errorf("hash len = %d, want 16", got)
	}
	m := NewManagerWithSource(config.FederatedConfig{NoiseScale: 5, Epsilon: 100, Method: "nope"}, rand.NewPCG(1, 1))
	if m.noiseScale != 1 || m.epsilon != 10 || m.method != MethodFedAvg {
		t.Errorf("clamped = %v %v %s", m.noiseScale, m.epsilon, m.method)
	}
}
