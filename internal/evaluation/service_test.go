// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package evaluation

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/events"
	"github.com/tomtom215/ideaforge/internal/idea"
)

type fakeCorpus struct {
	ideas    []*idea.Idea
	outcomes map[string]float64
	err      error
}

func (f *fakeCorpus) ListIdeas(context.Context) ([]*idea.Idea, error) { return f.ideas, f.err }

func (f *fakeCorpus) ReviewOutcomes(context.Context) (map[string]float64, error) {
	return f.outcomes, nil
}

type fakeTuner struct {
	weights idea.Weights
	set     int
}

func (f *fakeTuner) Weights() idea.Weights { return f.weights }

func (f *fakeTuner) SetBaseWeights(w idea.Weights) {
	f.weights = w
	f.set++
}

func (f *fakeTuner) RankIdeas(_ context.Context, w idea.Weights, in []*idea.Idea) ([]string, error) {
	sorted := append([]*idea.Idea(nil), in...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return w[idea.Sentiment]*sorted[i].Sentiment > w[idea.Sentiment]*sorted[j].Sentiment
	})
	return ids(sorted), nil
}

func optimizerConfig() config.OptimizerConfig {
	return config.OptimizerConfig{
		Enabled:      true,
		Interval:     time.Hour,
		Iterations:   20,
		Metric:       MetricNDCG,
		AlphaRate:    0.5,
		Seed:         42,
		MinFeedbacks: 2,
	}
}

func TestService_Run(t *testing.T) {
	ideas := makeIdeas(8)
	tuner := &fakeTuner{weights: idea.DefaultWeights()}
	rec := &events.Recorder{}
	svc := NewService(optimizerConfig(), &fakeCorpus{ideas: ideas}, tuner, rec, zerolog.Nop())

	res, err := svc.Run(context.Background(), RunRequest{
		GroundTruth: []string{"id-07", "id-06", "id-05"},
		Metric:      "bogus",
		Iterations:  500,
		Apply:       true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Metric != MetricNDCG {
		t.Errorf("Metric = %q, want ndcg", res.Metric)
	}
	if res.Iterations != maxIterations {
		t.Errorf("Iterations = %d, want %d", res.Iterations, maxIterations)
	}
	if res.GroundTruth != 3 || res.Runs != 1 {
		t.Errorf("GroundTruth = %d, Runs = %d", res.GroundTruth, res.Runs)
	}
	if res.Applied == nil || tuner.set != 1 {
		t.Fatalf("weights not applied: %+v, set = %d", res.Applied, tuner.set)
	}
	if !near(res.Applied.Sum(), 1) {
		t.Errorf("applied sum = %v, want 1", res.Applied.Sum())
	}
	evs := rec.Events()
	if len(evs) != 1 || evs[0].Type != events.WeightsUpdated {
		t.Errorf("events = %+v, want one weights.updated", evs)
	}
}

func TestService_RunWithoutApply(t *testing.T) {
	tuner := &fakeTuner{weights: idea.DefaultWeights()}
	cfg := optimizerConfig()
	cfg.GroundTruth = []string{"id-03"}
	svc := NewService(cfg, &fakeCorpus{ideas: makeIdeas(4)}, tuner, nil, zerolog.Nop())

	res, err := svc.Run(context.Background(), RunRequest{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Applied != nil || tuner.set != 0 {
		t.Error("weights applied without Apply")
	}
	if res.Iterations != 20 || res.GroundTruth != 1 {
		t.Errorf("Iterations = %d, GroundTruth = %d", res.Iterations, res.GroundTruth)
	}
}

func TestService_GroundTruth(t *testing.T) {
	tests := []struct {
		name     string
		outcomes map[string]float64
		want     []string
		wantErr  error
	}{
		{"no reviews", nil, nil, ErrNoGroundTruth},
		{"below minimum", map[string]float64{"a": 0.9}, nil, ErrNoGroundTruth},
		{"ordered by outcome", map[string]float64{"a": 0.2, "b": 0.9, "c": 0.5}, []string{"b", "c", "a"}, nil},
		{"ties by id", map[string]float64{"z": 0.5, "y": 0.5}, []string{"y", "z"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(optimizerConfig(), &fakeCorpus{outcomes: tt.outcomes}, &fakeTuner{}, nil, zerolog.Nop())
			got, err := svc.groundTruth(context.Background(), nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("groundTruth() error = %v, want %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("groundTruth() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("groundTruth()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestService_RunErrors(t *testing.T) {
	listErr := errors.New("db down")
	tests := []struct {
		name    string
		corpus  *fakeCorpus
		wantErr error
	}{
		{"list error", &fakeCorpus{err: listErr}, listErr},
		{"empty corpus", &fakeCorpus{}, ErrEmptyCorpus},
		{"no truth", &fakeCorpus{ideas: makeIdeas(3)}, ErrNoGroundTruth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(optimizerConfig(), tt.corpus, &fakeTuner{}, nil, zerolog.Nop())
			if _, err := svc.Run(context.Background(), RunRequest{}); !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_ServeStops(t *testing.T) {
	svc := NewService(optimizerConfig(), &fakeCorpus{}, &fakeTuner{}, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}
