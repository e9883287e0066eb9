// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package embedding turns idea text into fixed-length, L2-normalized vectors.
//
// Two providers are available and selected from configuration at startup:
//
//   - hash: a deterministic blake2b-seeded bag-of-words embedder with no
//     external dependencies. Identical text always yields the identical
//     vector and texts sharing words are similar.
//   - ollama: calls a local Ollama server's /api/embeddings endpoint behind
//     a circuit breaker.
//
// Either provider is wrapped in a CachedEmbedder keyed by the exact text.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/ideaforge/internal/config"
)

// Provider names.
const (
	ProviderHash   = "hash"
	ProviderOllama = "ollama"
)

// DefaultDimension is the embedding width used when none is configured.
const DefaultDimension = 384

var (
	// ErrEmptyEmbedding is returned when a provider answers with no vector.
	ErrEmptyEmbedding = errors.New("embedding: provider returned an empty vector")

	// ErrUnknownProvider is returned by New for an unsupported provider name.
	ErrUnknownProvider = errors.New("embedding: unknown provider")
)

// Embedder maps text to a unit-length vector. Implementations must be
// deterministic for identical input and safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	Name() string
}

// New builds the configured embedder wrapped in an LRU cache.
func New(cfg config.EmbeddingConfig) (Embedder, error) {
	var base Embedder
	switch cfg.Provider {
	case "", ProviderHash:
		base = NewHashEmbedder(cfg.Dimension)
	case ProviderOllama:
		base = NewOllamaEmbedder(OllamaConfig{
			URL:       cfg.OllamaURL,
			Model:     cfg.Model,
			Dimension: cfg.Dimension,
			Timeout:   cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	return NewCachedEmbedder(base, cfg.CacheSize), nil
}
