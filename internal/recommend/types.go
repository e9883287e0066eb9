// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package recommend

import (
	"strings"
	"time"

	"github.com/tomtom215/ideaforge/internal/features"
	"github.com/tomtom215/ideaforge/internal/idea"
)

// View selects the ranking perspective.
type View string

// Ranking views.
const (
	ViewConsensus View = "consensus"
	ViewUser      View = "user"
	ViewMarket    View = "market"
	ViewSwot      View = "swot"
)

// Views lists every named view.
var Views = []View{ViewConsensus, ViewUser, ViewMarket, ViewSwot}

// ParseView maps a request value to a View. Empty selects consensus;
// unknown names fall back to the user view.
func ParseView(s string) View {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ViewConsensus
	case ViewConsensus, ViewUser, ViewMarket, ViewSwot:
		return v
	default:
		return ViewUser
	}
}

// Candidate origins.
const (
	OriginRetrieved = "retrieved"
	OriginGenerated = "generated"
)

// Request is a ranking request.
type Request struct {
	// Query is the free-text query embedded for retrieval.
	Query string `json:"query"`

	// Tags optionally narrow the domain context and seed generation.
	Tags []string `json:"tags,omitempty"`

	// K is the number of results (1..MaxK; 0 selects DefaultK).
	K int `json:"k"`

	// Diversify applies MMR reranking.
	Diversify bool `json:"diversify"`

	// Generate merges freshly generated ideas into the pool.
	Generate bool `json:"generate"`

	// View selects the ranking perspective.
	View View `json:"view"`

	// Preset selects an MMR lambda preset (relevance, balanced, diversity).
	Preset string `json:"preset,omitempty"`

	// RequestID is set from the logging context when empty.
	RequestID string `json:"request_id,omitempty"`
}

// Candidate is one pooled idea with its retrieval similarity.
type Candidate struct {
	Idea       *idea.Idea
	Similarity float64
	Origin     string
}

// Scored is a candidate with its full scoring trace. It lives only for one
// request.
type Scored struct {
	Candidate

	Components idea.Vector
	Weights    idea.Weights

	// Linear is components . weights before any adjustment.
	Linear float64
	// Final is the score after every adjustment stage.
	Final float64
	// ViewScore is the view-specific weighted sum for the requested view.
	ViewScore float64
	// RankScore orders results and feeds MMR relevance.
	RankScore float64

	ESG           features.ESG
	Ethics        features.EthicsAssessment
	Feasibility   features.Feasibility
	Integrity     float64
	CausalImpact  float64
	ChainVerified bool
}

// Contribution is one feature's share of the linear score.
type Contribution struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Explanation  string  `json:"explanation"`
}

// Counterfactual is an illustrative rank-change estimate for a feature bump.
type Counterfactual struct {
	Feature     string  `json:"feature"`
	Current     float64 `json:"current_value"`
	New         float64 `json:"new_value"`
	Delta       float64 `json:"delta"`
	RankChange  int     `json:"rank_change"`
	Explanation string  `json:"explanation"`
}

// BreakdownEntry describes one feature in the full factor breakdown.
type BreakdownEntry struct {
	Value        float64 `json:"value"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Percentage   float64 `json:"percentage"`
}

// Explanation bundles top features, counterfactuals and the breakdown.
type Explanation struct {
	TopFeatures     []Contribution            `json:"top_features"`
	Counterfactuals []Counterfactual          `json:"counterfactuals"`
	Breakdown       map[string]BreakdownEntry `json:"breakdown"`
}

// Recommendation is one ranked result. Score is the composite score;
// results are ordered by RankScore, which is the view score for a named
// view and the blended score for consensus.
type Recommendation struct {
	Rank          int          `json:"rank"`
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Summary       string       `json:"summary"`
	Description   string       `json:"description"`
	Tags          []string     `json:"tags"`
	Author        string       `json:"author"`
	Origin        string       `json:"origin"`
	Score         float64      `json:"score"`
	ViewScore     float64      `json:"view_score"`
	RankScore     float64      `json:"rank_score"`
	ESG           float64      `json:"esg"`
	Integrity     float64      `json:"integrity"`
	EthicsFactor  float64      `json:"ethics_factor"`
	Feasibility   float64      `json:"feasibility"`
	CausalImpact  float64      `json:"causal_impact"`
	ChainVerified bool         `json:"chain_verified"`
	Explanation   *Explanation `json:"explanation,omitempty"`
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID    string       `json:"request_id"`
	View         View         `json:"view"`
	K            int          `json:"k"`
	Diversified  bool         `json:"diversified"`
	Lambda       float64      `json:"lambda,omitempty"`
	Candidates   int          `json:"candidates"`
	Generated    int          `json:"generated"`
	Persisted    int          `json:"persisted"`
	BaseWeights  idea.Weights `json:"base_weights"`
	BiasDetected bool         `json:"bias_detected"`
	CacheHit     bool         `json:"cache_hit"`
	LatencyMS    int64        `json:"latency_ms"`
	Timestamp    time.Time    `json:"timestamp"`
}

// Response is the ranked result list and its metadata.
type Response struct {
	Results  []Recommendation `json:"results"`
	Metadata ResponseMetadata `json:"metadata"`
}

// NewIdea is the ingestion input. Zero values take the package defaults.
type NewIdea struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Author      string   `json:"author,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Provenance  *float64 `json:"provenance,omitempty"`

	// Feasibility overrides; nil uses the neutral defaults.
	MarketSize       *float64 `json:"market_size,omitempty"`
	RevenuePotential *float64 `json:"revenue_potential,omitempty"`
	Cost             *float64 `json:"cost,omitempty"`
}

// Rejection reasons.
const (
	ReasonAdversarial = "adversarial"
	ReasonEthics      = "ethics"
)

// IngestResult reports the outcome of AddIdea.
type IngestResult struct {
	Outcome          idea.InsertOutcome         `json:"outcome"`
	ID               string                     `json:"id,omitempty"`
	Reason           string                     `json:"reason,omitempty"`
	ChainHash        string                     `json:"chain_hash,omitempty"`
	Ethics           *features.EthicsAssessment `json:"ethics,omitempty"`
	Feasibility      *features.Feasibility      `json:"feasibility,omitempty"`
	AdjustmentFactor float64                    `json:"adjustment_factor"`
	Idea             *idea.Idea                 `json:"idea,omitempty"`
}
