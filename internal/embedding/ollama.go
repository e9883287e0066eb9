// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package embedding

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/ideaforge/internal/breaker"
	"github.com/tomtom215/ideaforge/internal/features"
	"github.com/tomtom215/ideaforge/internal/metrics"
)

// OllamaConfig configures the Ollama embedder.
type OllamaConfig struct {
	URL       string
	Model     string
	Dimension int
	Timeout   time.Duration

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// OllamaEmbedder requests embeddings from a local Ollama server.
type OllamaEmbedder struct {
	baseURL string
	model   string
	dim     int
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[[]float32]
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewOllamaEmbedder creates an embedder for cfg.URL.
func NewOllamaEmbedder(cfg OllamaConfig) *OllamaEmbedder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = DefaultDimension
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &OllamaEmbedder{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		model:   cfg.Model,
		dim:     cfg.Dimension,
		client:  client,
		cb:      breaker.New[[]float32](breaker.Settings{Name: "ollama-embeddings"}),
	}
}

// Embed calls POST /api/embeddings and L2-normalizes the result.
func (o *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	v, err := o.cb.Execute(func() ([]float32, error) {
		return o.request(ctx, text)
	})
	metrics.RecordCollaboratorCall("embedder", ProviderOllama, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	return v, nil
}

func (o *OllamaEmbedder) request(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: o.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}

	v := make([]float32, len(out.Embedding))
	for i, x := range out.Embedding {
		v[i] = float32(x)
	}
	return features.Normalize(v), nil
}

// Dimension returns the configured width.
func (o *OllamaEmbedder) Dimension() int { return o.dim }

// Name returns the provider name.
func (o *OllamaEmbedder) Name() string { return ProviderOllama }
