// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package config

import (
	"fmt"
	"strings"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateDatabase,
		c.validateServer,
		c.validateAPI,
		c.validateLogging,
		c.validateEmbedding,
		c.validateGenerator,
		c.validateRecommend,
		c.validateFeedback,
		c.validateFederated,
		c.validateOptimizer,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads must be >= 0, got %d", c.Database.Threads)
	}
	if c.Database.IndexThreshold < 1 {
		return fmt.Errorf("database.index_threshold must be >= 1, got %d", c.Database.IndexThreshold)
	}
	if !c.Ledger.InMemory && c.Ledger.Path == "" {
		return fmt.Errorf("ledger.path is required unless ledger.in_memory is set")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.RateLimitDisabled {
		return nil
	}
	if c.API.RateLimitRequests < 1 {
		return fmt.Errorf("api.rate_limit_requests must be >= 1, got %d", c.API.RateLimitRequests)
	}
	if c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("api.rate_limit_window must be positive, got %s", c.API.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	switch c.Embedding.Provider {
	case "hash", "ollama":
	default:
		return fmt.Errorf("embedding.provider must be hash or ollama, got %q", c.Embedding.Provider)
	}
	if c.Embedding.Provider == "ollama" && c.Embedding.OllamaURL == "" {
		return fmt.Errorf("embedding.ollama_url is required for the ollama provider")
	}
	if c.Embedding.Dimension < 8 {
		return fmt.Errorf("embedding.dimension must be >= 8, got %d", c.Embedding.Dimension)
	}
	return nil
}

func (c *Config) validateGenerator() error {
	switch c.Generator.Provider {
	case "rule", "ollama":
	default:
		return fmt.Errorf("generator.provider must be rule or ollama, got %q", c.Generator.Provider)
	}
	if c.Generator.Provider == "ollama" && c.Generator.OllamaURL == "" {
		return fmt.Errorf("generator.ollama_url is required for the ollama provider")
	}
	if c.Generator.RequestsPerSecond <= 0 {
		return fmt.Errorf("generator.requests_per_second must be positive, got %f", c.Generator.RequestsPerSecond)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.DefaultK < 1 || r.DefaultK > r.MaxK {
		return fmt.Errorf("recommend.default_k must be in [1, %d], got %d", r.MaxK, r.DefaultK)
	}
	if r.MaxK > 20 {
		return fmt.Errorf("recommend.max_k must be <= 20, got %d", r.MaxK)
	}
	if r.RetrievalK < r.MaxK {
		return fmt.Errorf("recommend.retrieval_k must be >= max_k, got %d", r.RetrievalK)
	}
	for name, v := range map[string]float64{
		"recommend.mmr_lambda":        r.MMRLambda,
		"recommend.esg_weight":        r.ESGWeight,
		"recommend.market_volatility": r.MarketVolatility,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %f", name, v)
		}
	}
	if r.FreshnessLambda < 0 {
		return fmt.Errorf("recommend.freshness_lambda must be >= 0, got %f", r.FreshnessLambda)
	}
	return nil
}

func (c *Config) validateFeedback() error {
	f := c.Feedback
	if f.LearningRate <= 0 || f.LearningRate > 1 {
		return fmt.Errorf("feedback.learning_rate must be in (0, 1], got %f", f.LearningRate)
	}
	if f.EloMin >= f.EloMax {
		return fmt.Errorf("feedback.elo_min (%f) must be below feedback.elo_max (%f)", f.EloMin, f.EloMax)
	}
	if f.UncertaintyDecay <= 0 || f.UncertaintyDecay > 1 {
		return fmt.Errorf("feedback.uncertainty_decay must be in (0, 1], got %f", f.UncertaintyDecay)
	}
	return nil
}

func (c *Config) validateFederated() error {
	switch c.Federated.Method {
	case "fedavg", "median", "trimmed_mean":
		return nil
	default:
		return fmt.Errorf("federated.method must be fedavg, median or trimmed_mean, got %q", c.Federated.Method)
	}
}

func (c *Config) validateOptimizer() error {
	if !c.Optimizer.Enabled {
		return nil
	}
	switch c.Optimizer.Metric {
	case "ndcg", "precision", "recall":
	default:
		return fmt.Errorf("optimizer.metric must be ndcg, precision or recall, got %q", c.Optimizer.Metric)
	}
	if c.Optimizer.Interval <= 0 {
		return fmt.Errorf("optimizer.interval must be positive, got %s", c.Optimizer.Interval)
	}
	return nil
}
