// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package generation produces fresh candidate ideas for a query theme.
//
// The generator variant is chosen once from configuration: "ollama" asks a
// local model and parses its Title/Description/Tags output, "rule" fills
// fixed templates. Failures never abort a recommendation; they surface as
// a Result with Err set and no ideas, and the caller continues with
// retrieved candidates only.
package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/ideaforge/internal/config"
)

// Provider names.
const (
	ProviderRule   = "rule"
	ProviderOllama = "ollama"
)

// MaxIdeas bounds how many drafts a single call returns.
const MaxIdeas = 5

// ErrUnknownProvider is returned by New for an unsupported provider name.
var ErrUnknownProvider = errors.New("generation: unknown provider")

// Draft is a generated idea before ingestion.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Result is the outcome of one generation call. Exactly one of Ideas or
// Err is meaningful; an empty Ideas with a nil Err means the model answered
// but nothing was parsable.
type Result struct {
	Provider string
	Ideas    []Draft
	Err      error
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Generator creates up to n drafts for a theme.
type Generator interface {
	Generate(ctx context.Context, theme string, n int) Result
	Name() string
}

// New builds the configured generator.
func New(cfg config.GeneratorConfig) (Generator, error) {
	switch cfg.Provider {
	case "", ProviderRule:
		return NewRuleGenerator(), nil
	case ProviderOllama:
		return NewOllamaGenerator(OllamaConfig{
			URL:               cfg.OllamaURL,
			Model:             cfg.Model,
			Timeout:           cfg.Timeout,
			Temperature:       cfg.Temperature,
			MaxTokens:         cfg.MaxTokens,
			RequestsPerSecond: cfg.RequestsPerSecond,
			BreakerThreshold:  cfg.BreakerThreshold,
			BreakerTimeout:    cfg.BreakerTimeout,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

func clampCount(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxIdeas {
		return MaxIdeas
	}
	return n
}
