// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/ideaforge/internal/logging"
	"github.com/tomtom215/ideaforge/internal/recommend"
)

// RecommendRequest is the body of POST /recommendations.
type RecommendRequest struct {
	Query     string   `json:"query" validate:"required,max=500"`
	Tags      []string `json:"tags" validate:"max=10,dive,max=50"`
	K         int      `json:"k" validate:"omitempty,min=1,max=20"`
	Diversify bool     `json:"diversify"`
	Generate  bool     `json:"generate"`
	View      string   `json:"view" validate:"omitempty,oneof=consensus user market swot"`
	Preset    string   `json:"preset" validate:"omitempty,oneof=relevance balanced diversity"`
}

// ScenarioRequest is the body of POST /recommendations/scenarios.
type ScenarioRequest struct {
	Query   string   `json:"query" validate:"required,max=500"`
	Tags    []string `json:"tags" validate:"max=10,dive,max=50"`
	K       int      `json:"k" validate:"omitempty,min=1,max=20"`
	Feature string   `json:"feature" validate:"omitempty,feature"`
}

// Recommend handles POST /api/v1/recommendations.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req RecommendRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.deps.Engine.Recommend(r.Context(), recommend.Request{
		Query:     req.Query,
		Tags:      req.Tags,
		K:         req.K,
		Diversify: req.Diversify,
		Generate:  req.Generate,
		View:      recommend.ParseView(req.View),
		Preset:    req.Preset,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		writeRankingError(rw, r, err)
		return
	}
	rw.Success(resp)
}

// Scenarios handles POST /api/v1/recommendations/scenarios.
func (h *Handler) Scenarios(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req ScenarioRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	report, err := h.deps.Engine.Scenarios(r.Context(), recommend.ScenarioRequest{
		Query:   req.Query,
		Tags:    req.Tags,
		K:       req.K,
		Feature: req.Feature,
	})
	if err != nil {
		writeRankingError(rw, r, err)
		return
	}
	rw.Success(report)
}

func writeRankingError(rw *ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		rw.Error(http.StatusGatewayTimeout, ErrCodeTimeout, "Ranking timed out")
		return
	}
	logRequestError(r, "Ranking failed", err)
	rw.InternalError("Failed to rank ideas")
}
