// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package recommend

import (
	"time"

	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/features"
	"github.com/tomtom215/ideaforge/internal/idea"
	"github.com/tomtom215/ideaforge/internal/integrity"
)

// Blend factors for the post-linear adjustment stages.
const (
	feasibilityKeep  = 0.8
	feasibilityShare = 0.2
	causalKeep       = 0.9
	causalShare      = 0.1
	integrityBoost   = 0.1
)

// maxElo bounds the raw rating before normalization.
const maxElo = 4000

// neutralSerendipity is used when retrieval returned nothing.
const neutralSerendipity = 0.5

// Scorer computes components and the composite score for one request.
// It is built per request and is not safe for concurrent mutation.
type Scorer struct {
	cfg       config.RecommendConfig
	base      idea.Weights
	domain    string
	bias      *features.BiasReport
	causal    *features.CausalModel
	influence map[string]float64

	// Serendipity is 1 minus the best retrieval similarity.
	Serendipity float64
	Now         time.Time
}

// NewScorer builds a scorer. causal may be nil or unfitted, in which case
// causal impact falls back to influence.
func NewScorer(cfg config.RecommendConfig, base idea.Weights, domain string, bias *features.BiasReport,
	causal *features.CausalModel, influence map[string]float64, now time.Time) *Scorer {
	return &Scorer{
		cfg:         cfg,
		base:        base,
		domain:      domain,
		bias:        bias,
		causal:      causal,
		influence:   influence,
		Serendipity: neutralSerendipity,
		Now:         now,
	}
}

// CausalImpact returns the causal component of i.
func (s *Scorer) CausalImpact(i *idea.Idea) float64 {
	if s.causal != nil && s.causal.Fitted() {
		return s.causal.ImpactScore(features.CausalInputs(i))
	}
	return s.influence[i.ID]
}

// Components computes the feature vector of i.
func (s *Scorer) Components(i *idea.Idea) idea.Vector {
	var v idea.Vector
	v.Set(idea.Elo, features.Sanitize(i.EloRating, 0, maxElo, idea.DefaultElo)/idea.DefaultElo)
	v.Set(idea.BayesianMean, features.Sanitize(i.BayesianMean, 0, 1, idea.DefaultBayesianMean))
	v.Set(idea.Uncertainty, features.Sanitize(i.Uncertainty, 0, 1, idea.DefaultUncertainty))
	v.Set(idea.Sentiment, features.Sanitize(i.Sentiment, -1, 1, 0))
	v.Set(idea.Provenance, features.Sanitize(i.ProvenanceScore, 0, 1, idea.DefaultProvenance))
	v.Set(idea.Freshness, features.Freshness(i.Timestamp, s.Now, s.cfg.FreshnessLambda))
	v.Set(idea.Trend, features.Sanitize(i.TrendScore, 0, 1, 0.5))
	v.Set(idea.CausalImpact, features.Sanitize(s.CausalImpact(i), 0, 1, 0))
	v.Set(idea.Serendipity, features.Sanitize(s.Serendipity, 0, 1, neutralSerendipity))
	return v
}

// Weights adapts the base weights to the candidate's data quality.
func (s *Scorer) Weights(i *idea.Idea) idea.Weights {
	return AdaptWeights(s.base, RankingContext{
		Domain:      s.domain,
		Volatility:  s.cfg.MarketVolatility,
		DataQuality: i.ProvenanceScore,
		Fairness:    s.cfg.FairnessAdjustment,
		Bias:        s.bias,
	})
}

// Feasibility analyses i with neutral market inputs.
func (s *Scorer) Feasibility(i *idea.Idea) features.Feasibility {
	in := features.DefaultFeasibilityInputs()
	in.Trend = i.TrendScore
	in.Sentiment = i.Sentiment
	in.Uncertainty = i.Uncertainty
	in.Provenance = i.ProvenanceScore
	in.Volatility = s.cfg.MarketVolatility
	return features.AnalyzeFeasibility(in)
}

// Score runs the full pipeline for one candidate: linear score, ESG blend,
// ethics factor, feasibility blend, causal blend and integrity boost, each
// stage applied to the previous stage's output.
func (s *Scorer) Score(c Candidate) *Scored {
	i := c.Idea
	out := &Scored{Candidate: c}
	out.Components = s.Components(i)
	out.Weights = s.Weights(i)
	out.Linear = out.Components.Dot(out.Weights)

	out.ESG = features.ScoreESG(i.Title, i.Description)
	out.Ethics = features.AssessEthics(i.Text(), i.Tags, out.ESG.Total)
	out.Feasibility = s.Feasibility(i)
	out.CausalImpact = out.Components.Get(idea.CausalImpact)
	out.Integrity = integrity.Score(i, s.Now)

	score := features.BlendESG(out.Linear, out.ESG.Total, s.cfg.ESGWeight)
	score *= out.Ethics.AdjustmentFactor
	if s.cfg.FeasibilityEnabled {
		score = score*feasibilityKeep + out.Feasibility.Score()*feasibilityShare
	}
	if s.cfg.CausalEnabled {
		score = score*causalKeep + out.CausalImpact*causalShare
	}
	score *= 1 + out.Integrity*integrityBoost

	out.Final = score
	out.RankScore = score
	return out
}
