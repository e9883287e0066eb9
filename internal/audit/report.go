// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/ideaforge/internal/database"
	"github.com/tomtom215/ideaforge/internal/events"
	"github.com/tomtom215/ideaforge/internal/features"
	"github.com/tomtom215/ideaforge/internal/federated"
	"github.com/tomtom215/ideaforge/internal/idea"
	"github.com/tomtom215/ideaforge/internal/integrity"
)

// Days without a version snapshot before an idea is reported.
const (
	StagnationDays = 30
	RefreshDays    = 45
)

const provenanceIterations = 3

// ErrMissingSource is returned by NewReporter without an idea source.
var ErrMissingSource = errors.New("audit: idea source is required")

// IdeaSource lists ideas and their latest version snapshot times.
// *database.DB implements it.
type IdeaSource interface {
	ListIdeas(ctx context.Context) ([]*idea.Idea, error)
	LastVersionTimes(ctx context.Context) (map[string]time.Time, error)
}

// Chain summarizes the provenance ledger.
type Chain interface {
	Summary() integrity.Summary
}

// WeightSource exposes the ranking weights in effect.
type WeightSource interface {
	Weights() idea.Weights
}

// RoundHistory exposes federated aggregation rounds.
type RoundHistory interface {
	History() []federated.Round
}

// OptimizerStats exposes meta-learning progress.
type OptimizerStats interface {
	Runs() int
	Best() (idea.Weights, float64, bool)
}

// ReporterDeps are the report inputs. Only Ideas is required.
type ReporterDeps struct {
	Ideas      IdeaSource
	Chain      Chain
	Weights    WeightSource
	Federated  RoundHistory
	Optimizer  OptimizerStats
	Parameters map[string]any
	Events     events.Sink
	Logger     *Logger
}

// Reporter builds full system audit reports.
type Reporter struct {
	deps ReporterDeps
	now  func() time.Time
}

// NewReporter creates a reporter.
func NewReporter(deps ReporterDeps) (*Reporter, error) {
	if deps.Ideas == nil {
		return nil, ErrMissingSource
	}
	if deps.Events == nil {
		deps.Events = events.Nop{}
	}
	return &Reporter{deps: deps, now: idea.Now}, nil
}

// Report is a point-in-time audit of the corpus, ledger and learning state.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Status      string    `json:"status"`

	Integrity        integrity.Report    `json:"integrity_validation"`
	Bias             features.BiasReport `json:"bias_report"`
	Manifest         integrity.Manifest  `json:"manifest"`
	AverageIntegrity float64             `json:"average_integrity_score"`
	Chain            *integrity.Summary  `json:"chain_summary,omitempty"`

	StagnantIdeas     []database.StagnantIdea `json:"stagnant_ideas"`
	RefreshCandidates []database.StagnantIdea `json:"refresh_candidates"`

	PropagatedProvenance map[string]float64 `json:"propagated_provenance"`

	FederatedRounds  int      `json:"federated_rounds"`
	MetaLearningRuns int      `json:"meta_learning_runs"`
	BestMetric       *float64 `json:"best_metric,omitempty"`
}

// Build assembles a report. Tampered ideas raise IntegrityAlert events.
func (r *Reporter) Build(ctx context.Context) (*Report, error) {
	ideas, err := r.deps.Ideas.ListIdeas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	last, err := r.deps.Ideas.LastVersionTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load version times: %w", err)
	}

	now := r.now()
	rep := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: now,
		Integrity:   integrity.ValidateAll(ideas, now),
		Bias:        features.DetectBias(ideas),
	}
	rep.AverageIntegrity, _ = integrity.AverageScore(ideas, now)

	weights := idea.DefaultWeights()
	if r.deps.Weights != nil {
		weights = r.deps.Weights.Weights()
	}
	rep.Manifest, err = integrity.NewManifest(rep.RunID, weights.Map(), r.deps.Parameters, now)
	if err != nil {
		return nil, fmt.Errorf("build manifest: %w", err)
	}

	rep.Status = rep.Integrity.Status
	if r.deps.Chain != nil {
		s := r.deps.Chain.Summary()
		rep.Chain = &s
		if !s.ChainValid {
			rep.Status = integrity.StatusFail
		}
	}

	rep.StagnantIdeas = orEmpty(database.DetectStagnation(ideas, last, StagnationDays, now))
	rep.RefreshCandidates = orEmpty(database.DetectStagnation(ideas, last, RefreshDays, now))

	initial := make(map[string]float64, len(ideas))
	for _, i := range ideas {
		initial[i.ID] = i.ProvenanceScore
	}
	rep.PropagatedProvenance = features.BuildGraph(ideas, features.DefaultEdgeThreshold).
		PropagateProvenance(initial, provenanceIterations)

	if r.deps.Federated != nil {
		rep.FederatedRounds = len(r.deps.Federated.History())
	}
	if r.deps.Optimizer != nil {
		rep.MetaLearningRuns = r.deps.Optimizer.Runs()
		if _, best, ok := r.deps.Optimizer.Best(); ok {
			rep.BestMetric = &best
		}
	}

	for _, id := range rep.Integrity.TamperedIDs {
		r.deps.Events.Publish(ctx, events.Event{Type: events.IntegrityAlert, IdeaID: id, Outcome: "signature mismatch"})
	}
	if r.deps.Logger != nil {
		r.deps.Logger.Log(&Event{
			Type:        EventTypeAuditReport,
			Severity:    reportSeverity(rep.Status),
			Outcome:     OutcomeSuccess,
			Actor:       SystemActor(),
			Action:      "audit",
			Description: "Audit report " + rep.Status,
			Metadata: mustJSON(map[string]any{
				"run_id":        rep.RunID,
				"manifest_hash": rep.Manifest.ManifestHash,
				"tampered":      len(rep.Integrity.TamperedIDs),
				"stagnant":      len(rep.StagnantIdeas),
			}),
		})
	}
	return rep, nil
}

func reportSeverity(status string) Severity {
	if status == integrity.StatusPass {
		return SeverityInfo
	}
	return SeverityCritical
}

func orEmpty(s []database.StagnantIdea) []database.StagnantIdea {
	if s == nil {
		return []database.StagnantIdea{}
	}
	return s
}
