// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/ideaforge/internal/feedback"
	"github.com/tomtom215/ideaforge/internal/idea"
)

// RatingRequest is the body of POST /feedback/rating.
type RatingRequest struct {
	IdeaID string `json:"idea_id" validate:"required,ideaid"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
}

// CompareRequest is the body of POST /feedback/compare.
type CompareRequest struct {
	IdeaA      string `json:"idea_a" validate:"required,ideaid"`
	IdeaB      string `json:"idea_b" validate:"required,ideaid,nefield=IdeaA"`
	Preference string `json:"preference" validate:"required,oneof=A B equal a b"`
}

// ReviewRequest is the body of POST /feedback/review.
type ReviewRequest struct {
	IdeaID      string  `json:"idea_id" validate:"required,ideaid"`
	Relevance   float64 `json:"relevance" validate:"finite,gte=0,lte=1"`
	Novelty     float64 `json:"novelty" validate:"finite,gte=0,lte=1"`
	Feasibility float64 `json:"feasibility" validate:"finite,gte=0,lte=1"`
	Usefulness  float64 `json:"usefulness" validate:"finite,gte=0,lte=1"`
}

// FederatedRequest is the body of POST /feedback/federated. Weights take
// precedence over per-idea feedback values.
type FederatedRequest struct {
	UserID    string             `json:"user_id" validate:"required,max=100"`
	Weights   map[string]float64 `json:"weights" validate:"omitempty,max=20,dive,keys,feature,endkeys,finite,gte=0,lte=1"`
	Feedbacks map[string]float64 `json:"feedbacks" validate:"omitempty,max=500,dive,keys,max=100,endkeys,finite,gte=0,lte=1"`
	Encrypt   *bool              `json:"encrypt"`
}

// AggregateRequest is the body of POST /federated/aggregate.
type AggregateRequest struct {
	Method string `json:"method" validate:"omitempty,oneof=fedavg median trimmed_mean"`
}

func (h *Handler) feedbackAvailable(rw *ResponseWriter) bool {
	if h.deps.Feedback == nil {
		rw.ServiceUnavailable("Feedback is not enabled")
		return false
	}
	return true
}

// RateIdea handles POST /api/v1/feedback/rating.
func (h *Handler) RateIdea(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.feedbackAvailable(rw) {
		return
	}
	var req RatingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.deps.Feedback.Rate(r.Context(), req.IdeaID, req.Rating)
	if err != nil {
		writeFeedbackError(rw, r, err)
		return
	}
	rw.Success(res)
}

// CompareIdeas handles POST /api/v1/feedback/compare.
func (h *Handler) CompareIdeas(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.feedbackAvailable(rw) {
		return
	}
	var req CompareRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	pref, err := feedback.ParsePreference(req.Preference)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	res, err := h.deps.Feedback.Compare(r.Context(), req.IdeaA, req.IdeaB, pref)
	if err != nil {
		writeFeedbackError(rw, r, err)
		return
	}
	rw.Success(res)
}

// ReviewIdea handles POST /api/v1/feedback/review.
func (h *Handler) ReviewIdea(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.feedbackAvailable(rw) {
		return
	}
	var req ReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.deps.Feedback.SubmitReview(r.Context(), req.IdeaID, feedback.Review{
		Relevance:   req.Relevance,
		Novelty:     req.Novelty,
		Feasibility: req.Feasibility,
		Usefulness:  req.Usefulness,
	})
	if err != nil {
		writeFeedbackError(rw, r, err)
		return
	}
	rw.Success(res)
}

// SubmitFederated handles POST /api/v1/feedback/federated. Updates are
// masked unless encrypt is false.
func (h *Handler) SubmitFederated(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.feedbackAvailable(rw) {
		return
	}
	var req FederatedRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if len(req.Weights) == 0 && len(req.Feedbacks) == 0 {
		rw.BadRequest("weights or feedbacks is required")
		return
	}
	encrypt := true
	if req.Encrypt != nil {
		encrypt = *req.Encrypt
	}

	id, err := h.deps.Feedback.SubmitFederated(feedback.FederatedUpdate{
		UserID:    req.UserID,
		Weights:   req.Weights,
		Feedbacks: req.Feedbacks,
		Encrypt:   encrypt,
	})
	if err != nil {
		writeFeedbackError(rw, r, err)
		return
	}
	rw.Created(map[string]any{"update_id": id, "encrypted": encrypt})
}

// AggregateFederated handles POST /api/v1/federated/aggregate.
func (h *Handler) AggregateFederated(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.feedbackAvailable(rw) {
		return
	}
	var req AggregateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	method := req.Method
	if method == "" {
		method = "fedavg"
	}

	res, err := h.deps.Feedback.AggregateFederated(r.Context(), method)
	if err != nil {
		writeFeedbackError(rw, r, err)
		return
	}
	h.logAdmin(r, "federated.aggregate", "Federated aggregation round", map[string]any{
		"method": method,
		"rounds": res.Rounds,
	})
	rw.Success(res)
}

// FederatedHistory handles GET /api/v1/federated/history.
func (h *Handler) FederatedHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.feedbackAvailable(rw) {
		return
	}
	rw.Success(h.deps.Feedback.FederatedHistory())
}

func writeFeedbackError(rw *ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, idea.ErrNotFound):
		rw.NotFound("Idea not found")
	case errors.Is(err, feedback.ErrTimeout):
		rw.Error(http.StatusGatewayTimeout, ErrCodeTimeout, "Feedback was not applied in time")
	case errors.Is(err, feedback.ErrFederatedDisabled):
		rw.ServiceUnavailable(err.Error())
	case errors.Is(err, feedback.ErrInvalidRating),
		errors.Is(err, feedback.ErrInvalidPreference),
		errors.Is(err, feedback.ErrInvalidReview),
		errors.Is(err, feedback.ErrSameIdea),
		errors.Is(err, feedback.ErrMissingIdeaID):
		rw.BadRequest(err.Error())
	default:
		logRequestError(r, "Feedback failed", err)
		rw.InternalError("Failed to apply feedback")
	}
}
