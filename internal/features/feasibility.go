// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package features

import (
	"fmt"
	"math"
)

// FeasibilityInputs are the economic indicators for one idea. Values are
// expected in [0, 1] except Sentiment in [-1, 1]. Non-finite values fall
// back to the defaults from DefaultFeasibilityInputs.
type FeasibilityInputs struct {
	MarketSize       float64 `json:"market_size"`
	RevenuePotential float64 `json:"revenue_potential"`
	Cost             float64 `json:"cost"`
	Trend            float64 `json:"trend"`
	Sentiment        float64 `json:"sentiment"`
	Uncertainty      float64 `json:"uncertainty"`
	Complexity       float64 `json:"complexity"`
	Volatility       float64 `json:"volatility"`
	RegulatoryRisk   float64 `json:"regulatory_risk"`
	Provenance       float64 `json:"provenance"`
}

// DefaultFeasibilityInputs returns the neutral defaults.
func DefaultFeasibilityInputs() FeasibilityInputs {
	return FeasibilityInputs{
		MarketSize:       0.5,
		RevenuePotential: 0.5,
		Cost:             0.5,
		Trend:            0.5,
		Sentiment:        0,
		Uncertainty:      0.3,
		Complexity:       0.5,
		Volatility:       0.5,
		RegulatoryRisk:   0.3,
		Provenance:       0.7,
	}
}

func (in FeasibilityInputs) sanitized() FeasibilityInputs {
	d := DefaultFeasibilityInputs()
	return FeasibilityInputs{
		MarketSize:       Sanitize(in.MarketSize, 0, 1, d.MarketSize),
		RevenuePotential: Sanitize(in.RevenuePotential, 0, 1, d.RevenuePotential),
		Cost:             Sanitize(in.Cost, 0, 1, d.Cost),
		Trend:            Sanitize(in.Trend, 0, 1, d.Trend),
		Sentiment:        Sanitize(in.Sentiment, -1, 1, d.Sentiment),
		Uncertainty:      Sanitize(in.Uncertainty, 0, 1, d.Uncertainty),
		Complexity:       Sanitize(in.Complexity, 0, 1, d.Complexity),
		Volatility:       Sanitize(in.Volatility, 0, 1, d.Volatility),
		RegulatoryRisk:   Sanitize(in.RegulatoryRisk, 0, 1, d.RegulatoryRisk),
		Provenance:       Sanitize(in.Provenance, 0, 1, d.Provenance),
	}
}

// Feasibility is the ROI/risk analysis for one idea.
type Feasibility struct {
	ROI            float64 `json:"roi"`
	Risk           float64 `json:"risk"`
	ParetoScore    float64 `json:"pareto_score"`
	ROILevel       string  `json:"roi_level"`
	RiskLevel      string  `json:"risk_level"`
	Recommendation string  `json:"recommendation"`
	Explanation    string  `json:"explanation"`
}

// Score is the value blended into the final ranking score.
func (f Feasibility) Score() float64 { return f.ParetoScore }

// ROI returns sigmoid(5*(raw-0.5)) of the weighted market, revenue,
// inverse cost, trend and normalized sentiment.
func ROI(in FeasibilityInputs) float64 {
	in = in.sanitized()
	raw := 0.3*in.MarketSize +
		0.3*in.RevenuePotential +
		0.2*(1-in.Cost) +
		0.1*in.Trend +
		0.1*(in.Sentiment+1)/2
	return Clamp(1/(1+math.Exp(-5*(raw-0.5))), 0, 1)
}

// Risk returns the weighted uncertainty, complexity, volatility,
// regulatory risk and inverse provenance.
func Risk(in FeasibilityInputs) float64 {
	in = in.sanitized()
	raw := 0.25*in.Uncertainty +
		0.2*in.Complexity +
		0.2*in.Volatility +
		0.15*in.RegulatoryRisk +
		0.2*(1-in.Provenance)
	return Clamp(raw, 0, 1)
}

// Pareto balances ROI against risk. Risk above 0.9 caps the score at 10% of ROI.
func Pareto(roi, risk float64) float64 {
	roi = Clamp(roi, 0, 1)
	risk = Clamp(risk, 0, 1)
	if risk > 0.9 {
		return Clamp(roi*0.1, 0, 1)
	}
	return Clamp(roi*(1-risk*0.7), 0, 1)
}

// AnalyzeFeasibility runs the full ROI, risk and Pareto analysis.
func AnalyzeFeasibility(in FeasibilityInputs) Feasibility {
	roi := ROI(in)
	risk := Risk(in)
	pareto := Pareto(roi, risk)
	f := Feasibility{
		ROI:         roi,
		Risk:        risk,
		ParetoScore: pareto,
		ROILevel:    level(roi),
		RiskLevel:   level(risk),
	}
	f.Recommendation = feasibilityRecommendation(risk, pareto)
	f.Explanation = fmt.Sprintf("ROI: %s (%.2f), Risk: %s (%.2f)", f.ROILevel, roi, f.RiskLevel, risk)
	return f
}

func level(x float64) string {
	switch {
	case x < 0.3:
		return "Low"
	case x < 0.7:
		return "Medium"
	default:
		return "High"
	}
}

func feasibilityRecommendation(risk, pareto float64) string {
	switch {
	case pareto > 0.7:
		return "Strong investment candidate"
	case pareto > 0.5 && risk > 0.6:
		return "Promising but requires risk mitigation"
	case pareto > 0.5:
		return "Good investment candidate"
	case pareto > 0.3:
		return "Moderate potential - proceed with caution"
	default:
		return "High risk or low return - not recommended"
	}
}
