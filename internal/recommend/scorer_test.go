// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package recommend

import (
	"math"
	"testing"
	"time"

	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/features"
	"github.com/tomtom215/ideaforge/internal/idea"
)

const epsilon = 1e-9

var scorerNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testIdea(title string) *idea.Idea {
	i := &idea.Idea{
		ID:              idea.NewID(title, scorerNow),
		Title:           title,
		Description:     "A community workshop that teaches people to fix bicycles",
		Author:          "tester",
		Tags:            []string{"community"},
		EloRating:       idea.DefaultElo,
		BayesianMean:    idea.DefaultBayesianMean,
		Uncertainty:     idea.DefaultUncertainty,
		Sentiment:       0.5,
		TrendScore:      0.6,
		ProvenanceScore: idea.DefaultProvenance,
		Timestamp:       scorerNow,
	}
	i.Sign()
	return i
}

func plainScorer(cfg config.RecommendConfig, influence map[string]float64) *Scorer {
	return NewScorer(cfg, idea.DefaultWeights(), DomainGeneral, nil, nil, influence, scorerNow)
}

func TestScorer_Components(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*idea.Idea)
		feature idea.Feature
		want    float64
	}{
		{"default elo", func(*idea.Idea) {}, idea.Elo, 1},
		{"high elo", func(i *idea.Idea) { i.EloRating = 3000 }, idea.Elo, 2},
		{"elo beyond bound", func(i *idea.Idea) { i.EloRating = 9000 }, idea.Elo, maxElo / idea.DefaultElo},
		{"nan elo", func(i *idea.Idea) { i.EloRating = math.NaN() }, idea.Elo, 1},
		{"sentiment kept signed", func(i *idea.Idea) { i.Sentiment = -0.4 }, idea.Sentiment, -0.4},
		{"inf trend", func(i *idea.Idea) { i.TrendScore = math.Inf(1) }, idea.Trend, 0.5},
		{"fresh idea", func(*idea.Idea) {}, idea.Freshness, 1},
		{"hundred days old", func(i *idea.Idea) { i.Timestamp = scorerNow.Add(-100 * 24 * time.Hour) }, idea.Freshness, math.Exp(-1)},
		{"neutral serendipity", func(*idea.Idea) {}, idea.Serendipity, neutralSerendipity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			i := testIdea("components")
			tt.mutate(i)
			got := plainScorer(DefaultConfig(), nil).Components(i).Get(tt.feature)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("%s = %v, want %v", tt.feature, got, tt.want)
			}
		})
	}
}

func TestScorer_CausalFallsBackToInfluence(t *testing.T) {
	t.Parallel()

	i := testIdea("influential")
	s := plainScorer(DefaultConfig(), map[string]float64{i.ID: 0.75})
	if got := s.CausalImpact(i); got != 0.75 {
		t.Errorf("CausalImpact = %v, want influence 0.75", got)
	}

	s = NewScorer(DefaultConfig(), idea.DefaultWeights(), DomainGeneral, nil, features.NewCausalModel(), nil, scorerNow)
	if got := s.CausalImpact(i); got != 0 {
		t.Errorf("unfitted model without influence = %v, want 0", got)
	}
}

func TestScorer_Score_Stages(t *testing.T) {
	t.Parallel()

	bare := DefaultConfig()
	bare.ESGWeight = 0
	bare.FeasibilityEnabled = false
	bare.CausalEnabled = false

	i := testIdea("stages")
	out := plainScorer(bare, nil).Score(Candidate{Idea: i, Origin: OriginRetrieved})

	want := out.Linear * out.Ethics.AdjustmentFactor * (1 + integrityBoost*out.Integrity)
	if math.Abs(out.Final-want) > epsilon {
		t.Errorf("Final = %v, want %v", out.Final, want)
	}
	if out.RankScore != out.Final {
		t.Errorf("RankScore = %v, want Final %v", out.RankScore, out.Final)
	}

	full := plainScorer(DefaultConfig(), nil).Score(Candidate{Idea: i, Origin: OriginRetrieved})
	score := features.BlendESG(full.Linear, full.ESG.Total, DefaultConfig().ESGWeight)
	score *= full.Ethics.AdjustmentFactor
	score = score*feasibilityKeep + full.Feasibility.Score()*feasibilityShare
	score = score*causalKeep + full.CausalImpact*causalShare
	score *= 1 + integrityBoost*full.Integrity
	if math.Abs(full.Final-score) > epsilon {
		t.Errorf("Final = %v, want %v", full.Final, score)
	}
}

func TestScorer_Score_BlockedIdea(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.FeasibilityEnabled = false
	cfg.CausalEnabled = false

	i := testIdea("blocked")
	i.Description = "A scam that sells fake tickets"
	i.Sign()

	out := plainScorer(cfg, nil).Score(Candidate{Idea: i})
	if out.Ethics.AdjustmentFactor != 0 {
		t.Fatalf("AdjustmentFactor = %v, want 0", out.Ethics.AdjustmentFactor)
	}
	if out.Final != 0 {
		t.Errorf("Final = %v, want 0 for a blocked idea", out.Final)
	}
}

func TestScorer_Score_TamperedLosesIntegrity(t *testing.T) {
	t.Parallel()

	s := plainScorer(DefaultConfig(), nil)
	clean := testIdea("tamper")
	dirty := clean.Clone()
	dirty.HashSignature = "00"

	a := s.Score(Candidate{Idea: clean})
	b := s.Score(Candidate{Idea: dirty})
	if b.Integrity >= a.Integrity {
		t.Errorf("tampered integrity %v >= clean %v", b.Integrity, a.Integrity)
	}
	if b.Final >= a.Final {
		t.Errorf("tampered final %v >= clean %v", b.Final, a.Final)
	}
}

func TestAdaptWeights(t *testing.T) {
	t.Parallel()

	base := idea.DefaultWeights()
	neutral := RankingContext{Domain: DomainGeneral, Volatility: 0.5, DataQuality: 0.9}

	got := AdaptWeights(base, neutral)
	for _, f := range idea.AllFeatures() {
		if math.Abs(got[f]-base[f]) > epsilon {
			t.Errorf("neutral context changed %s: %v -> %v", f, base[f], got[f])
		}
	}

	tests := []struct {
		name    string
		ctx     RankingContext
		raised  idea.Feature
		lowered idea.Feature
	}{
		{"healthcare", RankingContext{Domain: DomainHealthcare, DataQuality: 0.9}, idea.Provenance, idea.Elo},
		{"technology", RankingContext{Domain: DomainTechnology, DataQuality: 0.9}, idea.Serendipity, idea.BayesianMean},
		{"volatile", RankingContext{Volatility: 0.9, DataQuality: 0.9}, idea.Trend, idea.Elo},
		{"low quality", RankingContext{DataQuality: 0.3}, idea.Uncertainty, idea.Sentiment},
		{"fairness", RankingContext{DataQuality: 0.9, Fairness: true}, idea.Serendipity, idea.Provenance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := AdaptWeights(base, tt.ctx)
			if math.Abs(w.Sum()-1) > epsilon {
				t.Errorf("Sum = %v, want 1", w.Sum())
			}
			if w[tt.raised] <= base[tt.raised] {
				t.Errorf("%s = %v, want > %v", tt.raised, w[tt.raised], base[tt.raised])
			}
			if w[tt.lowered] >= base[tt.lowered] {
				t.Errorf("%s = %v, want < %v", tt.lowered, w[tt.lowered], base[tt.lowered])
			}
		})
	}
}

func TestDomainFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		configured string
		tags       []string
		want       string
	}{
		{"general", nil, DomainGeneral},
		{"", []string{"misc", "Finance"}, DomainFinance},
		{"general", []string{"healthcare", "technology"}, DomainHealthcare},
		{"technology", []string{"finance"}, DomainTechnology},
		{"general", []string{"energy"}, DomainGeneral},
	}
	for _, tt := range tests {
		if got := domainFor(tt.configured, tt.tags); got != tt.want {
			t.Errorf("domainFor(%q, %v) = %q, want %q", tt.configured, tt.tags, got, tt.want)
		}
	}
}

func TestParseView(t *testing.T) {
	t.Parallel()

	tests := map[string]View{
		"":          ViewConsensus,
		"consensus": ViewConsensus,
		" Market ":  ViewMarket,
		"swot":      ViewSwot,
		"user":      ViewUser,
		"investor":  ViewUser,
	}
	for in, want := range tests {
		if got := ParseView(in); got != want {
			t.Errorf("ParseView(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestViewScore(t *testing.T) {
	t.Parallel()

	var v idea.Vector
	v.Set(idea.Trend, 1)
	v.Set(idea.Elo, 1)

	if got := ViewScore(ViewMarket, v); math.Abs(got-0.4) > epsilon {
		t.Errorf("market = %v, want 0.4", got)
	}
	if got := ViewScore(ViewUser, v); math.Abs(got-0.3) > epsilon {
		t.Errorf("user = %v, want 0.3", got)
	}
	if got, want := ViewScore("unknown", v), ViewScore(ViewUser, v); got != want {
		t.Errorf("unknown view = %v, want user %v", got, want)
	}
}

func TestRankByView(t *testing.T) {
	t.Parallel()

	var low, high idea.Vector
	low.Set(idea.Provenance, 0.1)
	high.Set(idea.Provenance, 0.9)

	got := RankByView(ViewSwot, []idea.Vector{low, high})
	if got[0] != 1 || got[1] != 0 {
		t.Errorf("RankByView = %v, want [1 0]", got)
	}
}

func TestBlendViews(t *testing.T) {
	t.Parallel()

	perView := [][]float64{{1, 0}, {0, 1}}
	got := BlendViews(perView, nil)
	if got[0] != 0.5 || got[1] != 0.5 {
		t.Errorf("equal blend = %v, want [0.5 0.5]", got)
	}

	got = BlendViews(perView, []float64{0.75, 0.25})
	if got[0] != 0.75 || got[1] != 0.25 {
		t.Errorf("weighted blend = %v, want [0.75 0.25]", got)
	}

	if BlendViews(nil, nil) != nil {
		t.Error("empty input should yield nil")
	}
}

func TestOrder_StableTies(t *testing.T) {
	t.Parallel()

	got := order([]float64{0.2, 0.5, 0.2, 0.5})
	want := []int{1, 3, 0, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
