// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package breaker builds the circuit breakers that guard calls to the
// external collaborators (Ollama embeddings and generation).
//
// Breaker state changes are logged and exported through the
// ideaforge_circuit_breaker_state gauge (0=closed, 1=half-open, 2=open).
package breaker

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/ideaforge/internal/logging"
	"github.com/tomtom215/ideaforge/internal/metrics"
)

// Defaults used when Settings carries zero values.
const (
	DefaultThreshold = 5
	DefaultTimeout   = 30 * time.Second
)

// Settings configures a breaker.
type Settings struct {
	// Name labels the breaker in logs and metrics.
	Name string

	// Threshold is the number of consecutive failures that opens the circuit.
	Threshold uint32

	// Timeout is how long the circuit stays open before a half-open trial request.
	Timeout time.Duration
}

// New creates a typed circuit breaker that opens after Threshold consecutive
// failures.
func New[T any](s Settings) *gobreaker.CircuitBreaker[T] {
	if s.Threshold == 0 {
		s.Threshold = DefaultThreshold
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}

	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)
	threshold := s.Threshold

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= threshold
			if trip {
				logging.Warn().
					Str("breaker", s.Name).
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("Opening circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", StateString(from)).
				Str("to", StateString(to)).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(StateValue(to))
		},
	})
}

// IsOpen reports whether err was produced by a breaker refusing the call.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// StateValue converts a breaker state to its gauge value.
func StateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// StateString converts a breaker state to its log label.
func StateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
