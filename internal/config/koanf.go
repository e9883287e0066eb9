// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ideaforge/config.yaml",
	"/etc/ideaforge/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// ollamaURLEnvVar sets the Ollama base URL for both the embedder and the generator.
const ollamaURLEnvVar = "OLLAMA_URL"

// Default returns the built-in defaults without reading files or the
// environment.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:           "/data/ideaforge.duckdb",
			MaxMemory:      "1GB",
			Threads:        0,
			IndexThreshold: 100,
		},
		Ledger: LedgerConfig{
			Path:       "/data/ledger",
			InMemory:   false,
			SyncWrites: true,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8088,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		API: APIConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			RequestTimeout:    30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Embedding: EmbeddingConfig{
			Provider:  "hash",
			OllamaURL: "http://localhost:11434",
			Model:     "nomic-embed-text",
			Dimension: 384,
			Timeout:   30 * time.Second,
			CacheSize: 4096,
		},
		Generator: GeneratorConfig{
			Provider:          "rule",
			OllamaURL:         "http://localhost:11434",
			Model:             "llama3.2:1b",
			Timeout:           60 * time.Second,
			Temperature:       0.7,
			MaxTokens:         512,
			RequestsPerSecond: 2,
			BreakerThreshold:  5,
			BreakerTimeout:    30 * time.Second,
		},
		Recommend: RecommendConfig{
			DefaultK:            5,
			MaxK:                20,
			RetrievalK:          20,
			GeneratedSimilarity: 0.01,
			MMRLambda:           0.5,
			FreshnessLambda:     0.01,
			ESGWeight:           0.15,
			FeasibilityEnabled:  true,
			CausalEnabled:       true,
			Domain:              "general",
			MarketVolatility:    0.5,
			FairnessAdjustment:  false,
			CacheTTL:            0,
			SentimentScale:      15,
			TrendScale:          20,
			ProvScale:           12,
			SentimentDelta:      0.2,
			TrendDelta:          0.15,
			ProvDelta:           0.2,
		},
		Feedback: FeedbackConfig{
			LearningRate:     0.1,
			EloK:             32,
			EloMin:           800,
			EloMax:           2200,
			StarStep:         16,
			UncertaintyDecay: 0.95,
			SubmitTimeout:    5 * time.Second,
		},
		Federated: FederatedConfig{
			NoiseScale: 0.1,
			Epsilon:    1.0,
			Method:     "fedavg",
			Encrypt:    true,
		},
		Optimizer: OptimizerConfig{
			Enabled:      false,
			Interval:     6 * time.Hour,
			Iterations:   50,
			Metric:       "ndcg",
			AlphaRate:    0.1,
			Seed:         42,
			MinFeedbacks: 10,
		},
		Audit: AuditConfig{
			Enabled:         true,
			RetentionDays:   90,
			BufferSize:      1024,
			CleanupInterval: 24 * time.Hour,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom is Load with an explicit config file path. An empty path skips the file layer.
func LoadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if url := os.Getenv(ollamaURLEnvVar); url != "" {
		for _, path := range []string{"embedding.ollama_url", "generator.ollama_url"} {
			if err := k.Set(path, url); err != nil {
				return nil, fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are keys whose env values arrive comma separated.
var sliceConfigPaths = []string{
	"api.cors_origins",
	"optimizer.ground_truth",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"duckdb_path":           "database.path",
	"duckdb_max_memory":     "database.max_memory",
	"duckdb_threads":        "database.threads",
	"index_threshold":       "database.index_threshold",
	"ledger_path":           "ledger.path",
	"ledger_in_memory":      "ledger.in_memory",
	"ledger_sync_writes":    "ledger.sync_writes",
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"cors_origins":        "api.cors_origins",
	"rate_limit_requests": "api.rate_limit_requests",
	"rate_limit_window":   "api.rate_limit_window",
	"disable_rate_limit":  "api.rate_limit_disabled",
	"api_request_timeout": "api.request_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"embedding_provider":   "embedding.provider",
	"embedding_model":      "embedding.model",
	"embedding_dimension":  "embedding.dimension",
	"embedding_timeout":    "embedding.timeout",
	"embedding_cache_size": "embedding.cache_size",

	"generator_provider":            "generator.provider",
	"generator_model":               "generator.model",
	"generator_timeout":             "generator.timeout",
	"generator_temperature":         "generator.temperature",
	"generator_max_tokens":          "generator.max_tokens",
	"generator_requests_per_second": "generator.requests_per_second",
	"generator_breaker_threshold":   "generator.breaker_threshold",
	"generator_breaker_timeout":     "generator.breaker_timeout",

	"recommend_default_k":         "recommend.default_k",
	"recommend_max_k":             "recommend.max_k",
	"recommend_retrieval_k":       "recommend.retrieval_k",
	"recommend_mmr_lambda":        "recommend.mmr_lambda",
	"recommend_freshness_lambda":  "recommend.freshness_lambda",
	"recommend_esg_weight":        "recommend.esg_weight",
	"recommend_feasibility":       "recommend.feasibility_enabled",
	"recommend_causal":            "recommend.causal_enabled",
	"recommend_domain":            "recommend.domain",
	"recommend_market_volatility": "recommend.market_volatility",
	"recommend_fairness":          "recommend.fairness_adjustment",
	"recommend_cache_ttl":         "recommend.cache_ttl",

	"feedback_learning_rate":  "feedback.learning_rate",
	"feedback_elo_k":          "feedback.elo_k",
	"feedback_submit_timeout": "feedback.submit_timeout",

	"federated_noise_scale": "federated.noise_scale",
	"federated_epsilon":     "federated.epsilon",
	"federated_method":      "federated.method",
	"federated_encrypt":     "federated.encrypt",

	"optimizer_enabled":      "optimizer.enabled",
	"optimizer_interval":     "optimizer.interval",
	"optimizer_iterations":   "optimizer.iterations",
	"optimizer_metric":       "optimizer.metric",
	"optimizer_seed":         "optimizer.seed",
	"optimizer_ground_truth": "optimizer.ground_truth",

	"audit_enabled":        "audit.enabled",
	"audit_retention_days": "audit.retention_days",
	"audit_buffer_size":    "audit.buffer_size",
}

// envTransformFunc maps environment variable names to koanf keys.
// Unmapped variables are skipped.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
