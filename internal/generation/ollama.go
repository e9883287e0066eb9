// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package generation

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
	"golang.org/x/time/rate"

	"github.com/tomtom215/ideaforge/internal/breaker"
	"github.com/tomtom215/ideaforge/internal/logging"
	"github.com/tomtom215/ideaforge/internal/metrics"
)

// OllamaConfig configures the Ollama generator.
type OllamaConfig struct {
	URL               string
	Model             string
	Timeout           time.Duration
	Temperature       float64
	MaxTokens         int
	RequestsPerSecond float64
	BreakerThreshold  uint32
	BreakerTimeout    time.Duration

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// OllamaGenerator asks a local model for ideas through /api/generate.
// Calls are paced by a token bucket and guarded by a circuit breaker.
type OllamaGenerator struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	limiter     *rate.Limiter
	cb          *gobreaker.CircuitBreaker[string]
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllamaGenerator creates a generator for cfg.URL.
func NewOllamaGenerator(cfg OllamaConfig) *OllamaGenerator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &OllamaGenerator{
		baseURL:     strings.TrimRight(cfg.URL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      client,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cb: breaker.New[string](breaker.Settings{
			Name:      "ollama-generate",
			Threshold: cfg.BreakerThreshold,
			Timeout:   cfg.BreakerTimeout,
		}),
	}
}

// Generate prompts the model and parses its answer. Transport failures,
// an open breaker, or a cancelled context come back in Result.Err.
func (g *OllamaGenerator) Generate(ctx context.Context, theme string, n int) Result {
	res := Result{Provider: ProviderOllama}

	if err := g.limiter.Wait(ctx); err != nil {
		res.Err = fmt.Errorf("ollama generate: rate limit: %w", err)
		return res
	}

	start := time.Now()
	raw, err := g.cb.Execute(func() (string, error) {
		return g.request(ctx, BuildPrompt(theme, n))
	})
	metrics.RecordCollaboratorCall("generator", ProviderOllama, time.Since(start), err)
	if err != nil {
		res.Err = fmt.Errorf("ollama generate: %w", err)
		return res
	}

	res.Ideas = Parse(raw, theme)
	if limit := clampCount(n); len(res.Ideas) > limit {
		res.Ideas = res.Ideas[:limit]
	}
	if len(res.Ideas) == 0 {
		logging.Ctx(ctx).Warn().Str("theme", theme).Msg("Model response contained no parsable ideas")
	}
	return res
}

func (g *OllamaGenerator) request(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: g.temperature,
			NumPredict:  g.maxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.Response, nil
}

// Name returns the provider name.
func (g *OllamaGenerator) Name() string { return ProviderOllama }
