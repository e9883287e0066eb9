// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package app assembles the Ideaforge component graph from configuration.
// The server and the ideactl CLI share it.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/ideaforge/internal/api"
	"github.com/tomtom215/ideaforge/internal/audit"
	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/database"
	"github.com/tomtom215/ideaforge/internal/embedding"
	"github.com/tomtom215/ideaforge/internal/evaluation"
	"github.com/tomtom215/ideaforge/internal/events"
	"github.com/tomtom215/ideaforge/internal/federated"
	"github.com/tomtom215/ideaforge/internal/feedback"
	"github.com/tomtom215/ideaforge/internal/generation"
	"github.com/tomtom215/ideaforge/internal/integrity"
	"github.com/tomtom215/ideaforge/internal/logging"
	"github.com/tomtom215/ideaforge/internal/recommend"
	"github.com/tomtom215/ideaforge/internal/websocket"
)

// Options select the optional pieces of the graph.
type Options struct {
	// LiveEvents creates the websocket hub and fans domain events to it.
	LiveEvents bool
}

// App holds every long-lived component.
type App struct {
	Config      *config.Config
	DB          *database.DB
	Ledger      *integrity.ChainStore
	Engine      *recommend.Engine
	Feedback    *feedback.Service
	Federated   *federated.Manager
	Optimizer   *evaluation.Service
	AuditStore  *audit.DuckDBStore
	AuditLogger *audit.Logger
	Reporter    *audit.Reporter
	Hub         *websocket.Hub
}

// New opens the stores and wires the collaborators in startup order:
// DuckDB, ledger, audit, embedder and generator, engine, feedback,
// optimizer. On error everything opened so far is closed.
func New(ctx context.Context, cfg *config.Config, opts Options) (_ *App, err error) {
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.DB, err = database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.Ledger, err = integrity.Open(cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if res := a.Ledger.Verify(); !res.Valid {
		logging.Warn().Int("invalid_blocks", len(res.Errors)).Msg("Provenance chain failed verification")
	}

	a.AuditStore = audit.NewDuckDBStore(a.DB.Conn())
	if err = a.AuditStore.CreateTable(ctx); err != nil {
		return nil, fmt.Errorf("create audit table: %w", err)
	}
	a.AuditLogger = audit.NewLogger(a.AuditStore, audit.ConfigFrom(cfg.Audit))

	sinks := events.Fanout{a.AuditLogger}
	if opts.LiveEvents {
		a.Hub = websocket.NewHub()
		sinks = append(sinks, a.Hub)
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	generator, err := generation.New(cfg.Generator)
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}

	a.Engine, err = recommend.NewEngine(cfg.Recommend, recommend.Deps{
		Store:     a.DB,
		Embedder:  embedder,
		Generator: generator,
		Ledger:    a.Ledger,
		Events:    sinks,
	}, logging.WithComponent("recommend"))
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	if cfg.Recommend.CausalEnabled {
		if n, cerr := a.Engine.RefitCausal(ctx); cerr != nil {
			logging.Warn().Err(cerr).Msg("Causal model not fitted")
		} else {
			logging.Info().Int("samples", n).Msg("Causal model fitted")
		}
	}

	a.Federated = federated.NewManager(cfg.Federated)
	a.Feedback, err = feedback.NewService(cfg.Feedback, feedback.Deps{
		Store:     a.DB,
		Ranker:    a.Engine,
		Federated: a.Federated,
		Events:    sinks,
	}, logging.WithComponent("feedback"))
	if err != nil {
		return nil, fmt.Errorf("create feedback service: %w", err)
	}

	a.Optimizer = evaluation.NewService(cfg.Optimizer, a.DB, a.Engine, sinks, logging.WithComponent("optimizer"))

	a.Reporter, err = audit.NewReporter(audit.ReporterDeps{
		Ideas:      a.DB,
		Chain:      a.Ledger,
		Weights:    a.Engine,
		Federated:  a.Federated,
		Optimizer:  a.Optimizer.Optimizer(),
		Parameters: reportParameters(cfg),
		Events:     sinks,
		Logger:     a.AuditLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("create reporter: %w", err)
	}
	return a, nil
}

// Handler builds the HTTP API handler over the graph.
func (a *App) Handler() (*api.Handler, error) {
	deps := api.Deps{
		Store:       a.DB,
		Engine:      a.Engine,
		Feedback:    a.Feedback,
		Ledger:      a.Ledger,
		Optimizer:   a.Optimizer,
		Reporter:    a.Reporter,
		AuditStore:  a.AuditStore,
		AuditLogger: a.AuditLogger,
		Hub:         a.Hub,
	}
	return api.NewHandler(deps, a.Config.API.CORSOrigins)
}

// StartFeedback runs the feedback writer in the background for callers
// without a supervisor tree. The returned stop function waits for it.
func (a *App) StartFeedback(ctx context.Context) (stop func(), err error) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if rerr := a.Feedback.Run(ctx); rerr != nil {
			logging.Error().Err(rerr).Msg("Feedback writer stopped")
		}
	}()

	select {
	case <-a.Feedback.Running():
	case <-done:
		cancel()
		return nil, errors.New("feedback writer exited during startup")
	case <-ctx.Done():
		cancel()
		<-done
		return nil, ctx.Err()
	}
	return func() {
		cancel()
		<-done
	}, nil
}

// Close releases the components in reverse startup order.
func (a *App) Close() error {
	var errs []error
	if a.Feedback != nil {
		errs = append(errs, a.Feedback.Close())
	}
	if a.AuditLogger != nil {
		errs = append(errs, a.AuditLogger.Close())
	}
	if a.Ledger != nil {
		errs = append(errs, a.Ledger.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func reportParameters(cfg *config.Config) map[string]any {
	r := cfg.Recommend
	return map[string]any{
		"domain":            r.Domain,
		"retrieval_k":       r.RetrievalK,
		"mmr_lambda":        r.MMRLambda,
		"freshness_lambda":  r.FreshnessLambda,
		"esg_weight":        r.ESGWeight,
		"market_volatility": r.MarketVolatility,
		"embedding":         cfg.Embedding.Provider,
		"generator":         cfg.Generator.Provider,
		"federated_method":  cfg.Federated.Method,
		"optimizer_metric":  cfg.Optimizer.Metric,
	}
}
