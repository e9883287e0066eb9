// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package metrics declares the Prometheus instruments exported at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation pipeline

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ideaforge_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"view", "generated"},
	)

	RecommendCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ideaforge_recommend_candidates",
			Help:    "Number of candidates scored per recommendation request",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		},
	)

	IdeasIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideaforge_ideas_ingested_total",
			Help: "Total number of idea insert attempts by outcome",
		},
		[]string{"outcome"}, // inserted, duplicate, rejected
	)

	FeedbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideaforge_feedback_events_total",
			Help: "Total number of feedback events applied by kind",
		},
		[]string{"kind", "result"}, // kind: rating, compare, review
	)

	EthicsDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideaforge_ethics_decisions_total",
			Help: "Total number of ethics assessments by action",
		},
		[]string{"action"}, // pass, downrank, block
	)

	IntegrityMismatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ideaforge_integrity_mismatches_total",
			Help: "Total number of ideas whose stored hash did not match recomputation",
		},
	)

	LedgerBlocks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ideaforge_ledger_blocks_appended_total",
			Help: "Total number of blocks appended to the provenance chain",
		},
	)

	// Collaborators

	CollaboratorCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideaforge_collaborator_calls_total",
			Help: "Total number of embedder and generator calls",
		},
		[]string{"collaborator", "provider", "result"},
	)

	CollaboratorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ideaforge_collaborator_duration_seconds",
			Help:    "Duration of embedder and generator calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collaborator", "provider"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ideaforge_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	EmbeddingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ideaforge_embedding_cache_hits_total",
			Help: "Total number of embedding cache hits",
		},
	)

	EmbeddingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ideaforge_embedding_cache_misses_total",
			Help: "Total number of embedding cache misses",
		},
	)

	// Storage

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ideaforge_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideaforge_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// HTTP API

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ideaforge_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ideaforge_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ideaforge_api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ideaforge_websocket_connections",
			Help: "Number of connected websocket clients",
		},
	)
)

// RecordRecommendation records one completed recommendation request.
func RecordRecommendation(view string, generated bool, candidates int, duration time.Duration) {
	gen := "false"
	if generated {
		gen = "true"
	}
	RecommendDuration.WithLabelValues(view, gen).Observe(duration.Seconds())
	RecommendCandidates.Observe(float64(candidates))
}

// RecordIngest records an idea insert attempt.
func RecordIngest(outcome string) {
	IdeasIngested.WithLabelValues(outcome).Inc()
}

// RecordFeedback records an applied or failed feedback event.
func RecordFeedback(kind string, err error) {
	result := "applied"
	if err != nil {
		result = "error"
	}
	FeedbackEvents.WithLabelValues(kind, result).Inc()
}

// RecordEthicsDecision records the action an ethics assessment produced.
func RecordEthicsDecision(action string) {
	EthicsDecisions.WithLabelValues(action).Inc()
}

// RecordCollaboratorCall records an embedder or generator call.
func RecordCollaboratorCall(collaborator, provider string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	CollaboratorCalls.WithLabelValues(collaborator, provider, result).Inc()
	CollaboratorDuration.WithLabelValues(collaborator, provider).Observe(duration.Seconds())
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
