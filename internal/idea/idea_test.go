// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package idea

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestNewIDStable(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := NewID("Solar Grid", ts)
	b := NewID("Solar Grid", ts)
	if a != b {
		t.Errorf("NewID not deterministic: %q vs %q", a, b)
	}
	if len(a) != 16 {
		t.Errorf("len(NewID) = %d, want 16", len(a))
	}
	if NewID("Solar Grid", ts.Add(time.Second)) == a {
		t.Error("different timestamps should give different IDs")
	}
}

func TestSignatureDetectsTampering(t *testing.T) {
	i := &Idea{ID: "abc", Title: "t", Description: "d", Timestamp: Now()}
	i.Sign()
	if !i.VerifySignature() {
		t.Fatal("fresh signature should verify")
	}
	i.Description = "changed"
	if i.VerifySignature() {
		t.Error("tampered description should fail verification")
	}
}

func TestNowMicrosecondPrecision(t *testing.T) {
	if Now().Nanosecond()%1000 != 0 {
		t.Error("Now() should be truncated to microseconds")
	}
}

func TestAgeDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		ts   time.Time
		want int
	}{
		{now, 0},
		{now.Add(-36 * time.Hour), 1},
		{now.AddDate(0, 0, -100), 100},
		{now.Add(time.Hour), 0},
	}
	for _, tt := range tests {
		i := &Idea{Timestamp: tt.ts}
		if got := i.AgeDays(now); got != tt.want {
			t.Errorf("AgeDays(%v) = %d, want %d", tt.ts, got, tt.want)
		}
	}
}

func TestSummaryTruncation(t *testing.T) {
	i := &Idea{Description: strings.Repeat("é", 150)}
	s := i.Summary()
	if len(s) > 200 {
		t.Errorf("summary length %d > 200", len(s))
	}
	if !strings.HasPrefix(i.Description, s) || len(s)%2 != 0 {
		t.Errorf("summary split a rune: %d bytes", len(s))
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	if got := DefaultWeights().Sum(); math.Abs(got-1) > 1e-9 {
		t.Errorf("DefaultWeights().Sum() = %v, want 1", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Weights
	}{
		{"scaled", DefaultWeights().Scale(Trend, 3)},
		{"negative and nan", Weights{Elo: -1, Trend: math.NaN(), Sentiment: 2}},
		{"all zero", Weights{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.in.Normalize()
			if math.Abs(w.Sum()-1) > 1e-9 {
				t.Errorf("Sum = %v, want 1", w.Sum())
			}
			for f, x := range w {
				if x < 0 || math.IsNaN(x) {
					t.Errorf("weight %s = %v", Feature(f), x)
				}
			}
		})
	}
}

func TestParseFeature(t *testing.T) {
	tests := []struct {
		name string
		want Feature
		ok   bool
	}{
		{"elo", Elo, true},
		{"CAUSAL_IMPACT", CausalImpact, true},
		{"bayesian", BayesianMean, true},
		{"causal", CausalImpact, true},
		{"esg", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseFeature(tt.name)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseFeature(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestWeightsJSON(t *testing.T) {
	w := DefaultWeights()
	data, err := json.Marshal(w)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"causal_impact":0.1`) {
		t.Errorf("unexpected encoding: %s", data)
	}
	var back Weights
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != w {
		t.Errorf("round trip = %v, want %v", back, w)
	}
}

func TestVectorDot(t *testing.T) {
	var v Vector
	v.Set(Elo, 2)
	v.Set(Trend, 1)
	w := Weights{Elo: 0.5, Trend: 0.25}
	if got := v.Dot(w); got != 1.25 {
		t.Errorf("Dot = %v, want 1.25", got)
	}
}

func TestInsertOutcomeString(t *testing.T) {
	if Duplicate.String() != "duplicate" || Rejected.String() != "rejected" || Inserted.String() != "inserted" {
		t.Error("unexpected outcome names")
	}
}
