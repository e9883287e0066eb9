// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package config loads Ideaforge configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for every setting
//  2. Config File: optional YAML file (config.yaml)
//  3. Environment Variables: override any setting
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Ledger    LedgerConfig    `koanf:"ledger"`
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Generator GeneratorConfig `koanf:"generator"`
	Recommend RecommendConfig `koanf:"recommend"`
	Feedback  FeedbackConfig  `koanf:"feedback"`
	Federated FederatedConfig `koanf:"federated"`
	Optimizer OptimizerConfig `koanf:"optimizer"`
	Audit     AuditConfig     `koanf:"audit"`
}

// DatabaseConfig holds DuckDB settings for the idea store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()

	// IndexThreshold is the record count at and above which similarity
	// search uses the in-memory index instead of a brute-force scan.
	IndexThreshold int `koanf:"index_threshold"`
}

// LedgerConfig holds Badger settings for the provenance hash chain.
type LedgerConfig struct {
	Path       string `koanf:"path"`
	InMemory   bool   `koanf:"in_memory"`
	SyncWrites bool   `koanf:"sync_writes"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// APIConfig holds HTTP API behavior.
type APIConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// EmbeddingConfig selects and tunes the text embedder.
type EmbeddingConfig struct {
	Provider  string        `koanf:"provider"` // hash | ollama
	OllamaURL string        `koanf:"ollama_url"`
	Model     string        `koanf:"model"`
	Dimension int           `koanf:"dimension"`
	Timeout   time.Duration `koanf:"timeout"`
	CacheSize int           `koanf:"cache_size"`
}

// GeneratorConfig selects and tunes the idea generator.
type GeneratorConfig struct {
	Provider          string        `koanf:"provider"` // rule | ollama
	OllamaURL         string        `koanf:"ollama_url"`
	Model             string        `koanf:"model"`
	Timeout           time.Duration `koanf:"timeout"`
	Temperature       float64       `koanf:"temperature"`
	MaxTokens         int           `koanf:"max_tokens"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	BreakerThreshold  uint32        `koanf:"breaker_threshold"`
	BreakerTimeout    time.Duration `koanf:"breaker_timeout"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	DefaultK            int           `koanf:"default_k"`
	MaxK                int           `koanf:"max_k"`
	RetrievalK          int           `koanf:"retrieval_k"`
	GeneratedSimilarity float64       `koanf:"generated_similarity"`
	MMRLambda           float64       `koanf:"mmr_lambda"`
	FreshnessLambda     float64       `koanf:"freshness_lambda"`
	ESGWeight           float64       `koanf:"esg_weight"`
	FeasibilityEnabled  bool          `koanf:"feasibility_enabled"`
	CausalEnabled       bool          `koanf:"causal_enabled"`
	Domain              string        `koanf:"domain"`
	MarketVolatility    float64       `koanf:"market_volatility"`
	FairnessAdjustment  bool          `koanf:"fairness_adjustment"`
	CacheTTL            time.Duration `koanf:"cache_ttl"`

	// Rank-change estimate constants for counterfactual explanations.
	SentimentScale float64 `koanf:"sentiment_scale"`
	TrendScale     float64 `koanf:"trend_scale"`
	ProvScale      float64 `koanf:"provenance_scale"`
	SentimentDelta float64 `koanf:"sentiment_delta"`
	TrendDelta     float64 `koanf:"trend_delta"`
	ProvDelta      float64 `koanf:"provenance_delta"`
}

// FeedbackConfig holds rating update rules.
type FeedbackConfig struct {
	LearningRate     float64       `koanf:"learning_rate"`
	EloK             float64       `koanf:"elo_k"`
	EloMin           float64       `koanf:"elo_min"`
	EloMax           float64       `koanf:"elo_max"`
	StarStep         float64       `koanf:"star_step"`
	UncertaintyDecay float64       `koanf:"uncertainty_decay"`
	SubmitTimeout    time.Duration `koanf:"submit_timeout"`
}

// FederatedConfig holds privacy settings for federated feedback.
type FederatedConfig struct {
	NoiseScale float64 `koanf:"noise_scale"`
	Epsilon    float64 `koanf:"epsilon"`
	Method     string  `koanf:"method"` // fedavg | median | trimmed_mean
	Encrypt    bool    `koanf:"encrypt"`
}

// OptimizerConfig controls the periodic weight meta-learning service.
type OptimizerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Interval     time.Duration `koanf:"interval"`
	Iterations   int           `koanf:"iterations"`
	Metric       string        `koanf:"metric"` // ndcg | precision | recall
	AlphaRate    float64       `koanf:"alpha_rate"`
	Seed         int64         `koanf:"seed"`
	GroundTruth  []string      `koanf:"ground_truth"`
	MinFeedbacks int           `koanf:"min_feedbacks"`
}

// AuditConfig controls the audit event log.
type AuditConfig struct {
	Enabled         bool          `koanf:"enabled"`
	RetentionDays   int           `koanf:"retention_days"`
	BufferSize      int           `koanf:"buffer_size"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// Addr returns the HTTP listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
