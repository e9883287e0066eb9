// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package evaluation

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tomtom215/ideaforge/internal/idea"
	"github.com/tomtom215/ideaforge/internal/logging"
)

// Optimization metrics.
const (
	MetricNDCG      = "ndcg"
	MetricPrecision = "precision"
	MetricRecall    = "recall"
)

const (
	minIterations = 10
	maxIterations = 200
	optimizeK     = 10
)

// Bound is the sampling interval for one weight.
type Bound struct {
	Min, Max float64
}

// Bounds holds one sampling interval per feature.
type Bounds [idea.NumFeatures]Bound

// DefaultBounds returns the per-feature search ranges.
func DefaultBounds() Bounds {
	return Bounds{
		idea.Elo:          {0.05, 0.25},
		idea.BayesianMean: {0.05, 0.25},
		idea.Uncertainty:  {0.01, 0.15},
		idea.Sentiment:    {0.05, 0.25},
		idea.Provenance:   {0.05, 0.20},
		idea.Freshness:    {0.05, 0.20},
		idea.Trend:        {0.05, 0.25},
		idea.CausalImpact: {0.05, 0.20},
		idea.Serendipity:  {0.01, 0.15},
	}
}

// WeightedRanker ranks ideas under the given weights and returns ids in
// ranked order.
type WeightedRanker func(ctx context.Context, w idea.Weights, ideas []*idea.Idea) ([]string, error)

// Trial is one sampled weight vector and its score.
type Trial struct {
	Iteration int          `json:"iteration"`
	Weights   idea.Weights `json:"weights"`
	Score     float64      `json:"score"`
	Metric    string       `json:"metric"`
	Timestamp time.Time    `json:"timestamp"`
}

// Optimizer searches the weight space by random sampling within bounds and
// keeps the best vector seen across runs.
type Optimizer struct {
	mu         sync.Mutex
	bounds     Bounds
	rng        *rand.Rand
	history    []Trial
	runs       int
	best       idea.Weights
	bestMetric float64
	hasBest    bool
}

// NewOptimizer returns an optimizer with DefaultBounds and a seeded sampler.
func NewOptimizer(seed uint64) *Optimizer {
	return &Optimizer{
		bounds:     DefaultBounds(),
		rng:        rand.New(rand.NewPCG(seed, seed+1)),
		bestMetric: math.Inf(-1),
	}
}

// Optimize samples iterations weight vectors (clamped to [10,200]), scores
// each ranking against truth with metric at k=10, and returns the best
// weights found so far. Empty inputs return the default weights.
func (o *Optimizer) Optimize(ctx context.Context, rank WeightedRanker, ideas []*idea.Idea, truth []string, metric string, iterations int) idea.Weights {
	if len(ideas) == 0 || len(truth) == 0 {
		return idea.DefaultWeights()
	}
	if !validMetric(metric) {
		metric = MetricNDCG
	}
	iterations = max(minIterations, min(maxIterations, iterations))

	o.mu.Lock()
	defer o.mu.Unlock()

	log := logging.WithComponent("optimizer")
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if ctx.Err() != nil {
			break
		}
		w := o.sample().Normalize()
		ranked, err := rank(ctx, w, ideas)
		if err != nil {
			continue
		}
		score := Score(ranked, truth, metric)
		if score > o.bestMetric {
			o.bestMetric = score
			o.best = w
			o.hasBest = true
		}
		o.history = append(o.history, Trial{
			Iteration: i,
			Weights:   w,
			Score:     score,
			Metric:    metric,
			Timestamp: time.Now().UTC(),
		})
	}
	o.runs++

	log.Info().
		Str("metric", metric).
		Int("iterations", iterations).
		Float64("best", o.bestMetric).
		Dur("elapsed", time.Since(start)).
		Msg("Weight optimization finished")

	if !o.hasBest {
		return idea.DefaultWeights()
	}
	return o.best
}

// UpdateAlpha blends current toward the best weights by lr (clamped to
// [0.01,1]) and renormalizes. Without a best vector it returns defaults.
func (o *Optimizer) UpdateAlpha(current idea.Weights, lr float64) idea.Weights {
	if math.IsNaN(lr) {
		lr = 0.1
	}
	lr = math.Max(0.01, math.Min(1, lr))

	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.hasBest {
		return idea.DefaultWeights()
	}
	var out idea.Weights
	for i := range out {
		out[i] = (1-lr)*current[i] + lr*o.best[i]
	}
	return out.Normalize()
}

// Best returns the best weights, their score and whether any run succeeded.
func (o *Optimizer) Best() (idea.Weights, float64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.best, o.bestMetric, o.hasBest
}

// Runs returns the number of completed Optimize calls.
func (o *Optimizer) Runs() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.runs
}

// History returns a copy of every trial.
func (o *Optimizer) History() []Trial {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Trial, len(o.history))
	copy(out, o.history)
	return out
}

// Score evaluates ranked against truth at k=10 with the named metric.
func Score(ranked, truth []string, metric string) float64 {
	if len(ranked) == 0 || len(truth) == 0 {
		return 0
	}
	switch metric {
	case MetricPrecision:
		return Precision(ranked, truth, optimizeK)
	case MetricRecall:
		return Recall(ranked, truth, optimizeK)
	default:
		return NDCG(ranked, truth, optimizeK)
	}
}

func (o *Optimizer) sample() idea.Weights {
	var w idea.Weights
	for i, b := range o.bounds {
		w[i] = b.Min + o.rng.Float64()*(b.Max-b.Min)
	}
	return w
}

func validMetric(m string) bool {
	return m == MetricNDCG || m == MetricPrecision || m == MetricRecall
}
