// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/ideaforge/internal/evaluation"
)

// EvaluateRequest is the body of POST /evaluate.
type EvaluateRequest struct {
	RankedIDs      []string `json:"ranked_ids" validate:"required,min=1,max=1000,dive,required,max=100"`
	GroundTruthIDs []string `json:"ground_truth_ids" validate:"required,min=1,max=1000,dive,required,max=100"`
	KValues        []int    `json:"k_values" validate:"omitempty,max=10,dive,min=1"`
	Format         string   `json:"format" validate:"omitempty,oneof=json text html"`
}

// EvaluateResponse carries the metrics and, when a format is requested, the
// rendered report.
type EvaluateResponse struct {
	Metrics evaluation.Metrics `json:"metrics"`
	Report  string             `json:"report,omitempty"`
}

// CrossValidateRequest is the body of POST /evaluate/cross-validate.
type CrossValidateRequest struct {
	Folds int    `json:"n_folds" validate:"omitempty,min=2,max=10"`
	Seed  uint64 `json:"seed"`
}

// OptimizeRequest is the body of POST /optimize.
type OptimizeRequest struct {
	GroundTruth []string `json:"ground_truth" validate:"omitempty,max=1000,dive,required,max=100"`
	Metric      string   `json:"metric" validate:"omitempty,oneof=ndcg precision recall"`
	Iterations  int      `json:"iterations" validate:"omitempty,min=1,max=200"`
	Apply       bool     `json:"apply"`
}

// Evaluate handles POST /api/v1/evaluate.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req EvaluateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	m, err := evaluation.Evaluate(req.RankedIDs, req.GroundTruthIDs, req.KValues)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	resp := EvaluateResponse{Metrics: m}
	if req.Format != "" {
		report, err := evaluation.Render(m, req.Format)
		if err != nil {
			logRequestError(r, "Failed to render evaluation report", err)
			rw.InternalError("Failed to render report")
			return
		}
		resp.Report = report
	}
	rw.Success(resp)
}

// CrossValidate handles POST /api/v1/evaluate/cross-validate. Each fold of
// the stored corpus is ranked by the current weights.
func (h *Handler) CrossValidate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req CrossValidateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	folds := req.Folds
	if folds == 0 {
		folds = evaluation.DefaultFolds
	}

	ideas, err := h.deps.Store.ListIdeas(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	cv, err := evaluation.CrossValidate(r.Context(), ideas, h.deps.Engine.RankCurrent, folds, req.Seed)
	switch {
	case errors.Is(err, evaluation.ErrInvalidFolds):
		rw.BadRequest(err.Error())
	case err != nil:
		logRequestError(r, "Cross-validation failed", err)
		rw.InternalError("Cross-validation failed")
	default:
		rw.Success(cv)
	}
}

// Optimize handles POST /api/v1/optimize.
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.deps.Optimizer == nil {
		rw.ServiceUnavailable("Optimizer is not enabled")
		return
	}

	var req OptimizeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.deps.Optimizer.Run(r.Context(), evaluation.RunRequest{
		GroundTruth: req.GroundTruth,
		Metric:      req.Metric,
		Iterations:  req.Iterations,
		Apply:       req.Apply,
	})
	switch {
	case errors.Is(err, evaluation.ErrNoGroundTruth), errors.Is(err, evaluation.ErrEmptyCorpus):
		rw.BadRequest(err.Error())
		return
	case err != nil:
		logRequestError(r, "Optimization failed", err)
		rw.InternalError("Optimization failed")
		return
	}

	if req.Apply {
		h.logAdmin(r, "weights.optimize", "Applied optimized ranking weights", map[string]any{
			"metric":     res.Metric,
			"best_score": res.BestScore,
			"runs":       res.Runs,
		})
	}
	rw.Success(res)
}

// Weights handles GET /api/v1/weights.
func (h *Handler) Weights(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]any{
		"weights": h.deps.Engine.Weights(),
	})
}
