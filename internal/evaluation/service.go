// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package evaluation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/events"
	"github.com/tomtom215/ideaforge/internal/idea"
)

var (
	// ErrNoGroundTruth is returned when no ground truth is given, configured
	// or derivable from reviews.
	ErrNoGroundTruth = errors.New("no ground truth available for optimization")

	// ErrEmptyCorpus is returned when there are no ideas to rank.
	ErrEmptyCorpus = errors.New("no ideas to optimize against")
)

// Corpus supplies the ideas and review outcomes the optimizer scores
// against. *database.DB implements it.
type Corpus interface {
	ListIdeas(ctx context.Context) ([]*idea.Idea, error)
	ReviewOutcomes(ctx context.Context) (map[string]float64, error)
}

// Tuner is the ranking engine whose base weights the optimizer moves.
// *recommend.Engine implements it.
type Tuner interface {
	Weights() idea.Weights
	SetBaseWeights(w idea.Weights)
	RankIdeas(ctx context.Context, w idea.Weights, ideas []*idea.Idea) ([]string, error)
}

// RunRequest overrides the configured run parameters. Zero values use the
// service configuration.
type RunRequest struct {
	GroundTruth []string `json:"ground_truth,omitempty"`
	Metric      string   `json:"metric,omitempty"`
	Iterations  int      `json:"iterations,omitempty"`
	Apply       bool     `json:"apply"`
}

// RunResult reports one optimization run.
type RunResult struct {
	Best        idea.Weights  `json:"best_weights"`
	BestScore   float64       `json:"best_score"`
	Applied     *idea.Weights `json:"applied_weights,omitempty"`
	Metric      string        `json:"metric"`
	Iterations  int           `json:"iterations"`
	GroundTruth int           `json:"ground_truth_size"`
	Runs        int           `json:"runs"`
}

// Service runs the optimizer periodically and on demand.
// It implements suture.Service.
type Service struct {
	cfg       config.OptimizerConfig
	optimizer *Optimizer
	corpus    Corpus
	tuner     Tuner
	sink      events.Sink
	logger    zerolog.Logger
}

// NewService creates an optimizer service. sink may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(cfg config.OptimizerConfig, corpus Corpus, tuner Tuner, sink events.Sink, logger zerolog.Logger) *Service {
	if sink == nil {
		sink = events.Nop{}
	}
	return &Service{
		cfg:       cfg,
		optimizer: NewOptimizer(uint64(cfg.Seed)), //nolint:gosec // seed is a non-negative config value
		corpus:    corpus,
		tuner:     tuner,
		sink:      sink,
		logger:    logger.With().Str("component", "optimizer").Logger(),
	}
}

// Optimizer exposes the underlying search state.
func (s *Service) Optimizer() *Optimizer {
	return s.optimizer
}

// Serve runs an optimization every interval until ctx is canceled. Runs
// that lack ground truth are skipped quietly.
func (s *Service) Serve(ctx context.Context) error {
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			res, err := s.Run(ctx, RunRequest{Apply: true})
			switch {
			case errors.Is(err, ErrNoGroundTruth), errors.Is(err, ErrEmptyCorpus):
				s.logger.Debug().Err(err).Msg("Skipping scheduled optimization")
			case err != nil:
				s.logger.Error().Err(err).Msg("Scheduled optimization failed")
			default:
				s.logger.Info().Float64("best_score", res.BestScore).Int("runs", res.Runs).Msg("Scheduled optimization complete")
			}
		}
	}
}

// Run performs one optimization. With Apply set the engine's base weights
// are blended toward the best vector by the configured alpha rate.
func (s *Service) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	ideas, err := s.corpus.ListIdeas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	if len(ideas) == 0 {
		return nil, ErrEmptyCorpus
	}

	truth, err := s.groundTruth(ctx, req.GroundTruth)
	if err != nil {
		return nil, err
	}

	metric := req.Metric
	if !validMetric(metric) {
		metric = s.cfg.Metric
	}
	if !validMetric(metric) {
		metric = MetricNDCG
	}
	iterations := req.Iterations
	if iterations <= 0 {
		iterations = s.cfg.Iterations
	}
	iterations = max(minIterations, min(maxIterations, iterations))

	s.optimizer.Optimize(ctx, s.tuner.RankIdeas, ideas, truth, metric, iterations)
	best, score, _ := s.optimizer.Best()
	res := &RunResult{
		Best:        best,
		BestScore:   score,
		Metric:      metric,
		Iterations:  iterations,
		GroundTruth: len(truth),
		Runs:        s.optimizer.Runs(),
	}

	if req.Apply {
		applied := s.optimizer.UpdateAlpha(s.tuner.Weights(), s.cfg.AlphaRate)
		s.tuner.SetBaseWeights(applied)
		res.Applied = &applied
		s.sink.Publish(ctx, events.Event{
			Type:    events.WeightsUpdated,
			Outcome: "meta_learning",
			Data:    map[string]any{"metric": metric, "best_score": score, "weights": applied.Map()},
		})
	}
	return res, nil
}

// groundTruth picks the explicit list, then the configured list, then ideas
// ordered by their mean review score once enough reviews exist.
func (s *Service) groundTruth(ctx context.Context, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	if len(s.cfg.GroundTruth) > 0 {
		return s.cfg.GroundTruth, nil
	}

	outcomes, err := s.corpus.ReviewOutcomes(ctx)
	if err != nil {
		return nil, fmt.Errorf("review outcomes: %w", err)
	}
	if len(outcomes) == 0 || len(outcomes) < s.cfg.MinFeedbacks {
		return nil, ErrNoGroundTruth
	}
	truth := make([]string, 0, len(outcomes))
	for id := range outcomes {
		truth = append(truth, id)
	}
	sort.Slice(truth, func(i, j int) bool {
		if outcomes[truth[i]] != outcomes[truth[j]] {
			return outcomes[truth[i]] > outcomes[truth[j]]
		}
		return truth[i] < truth[j]
	})
	return truth, nil
}
