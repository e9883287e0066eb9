// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/ideaforge/internal/database"
	"github.com/tomtom215/ideaforge/internal/idea"
	"github.com/tomtom215/ideaforge/internal/integrity"
	"github.com/tomtom215/ideaforge/internal/recommend"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// CreateIdeaRequest is the body of POST /ideas.
type CreateIdeaRequest struct {
	Title            string   `json:"title" validate:"required,max=200"`
	Description      string   `json:"description" validate:"required,max=5000"`
	Author           string   `json:"author" validate:"max=100"`
	Tags             []string `json:"tags" validate:"max=20,dive,max=50"`
	Provenance       *float64 `json:"provenance" validate:"omitempty,finite,gte=0,lte=1"`
	MarketSize       *float64 `json:"market_size" validate:"omitempty,finite,gte=0,lte=1"`
	RevenuePotential *float64 `json:"revenue_potential" validate:"omitempty,finite,gte=0,lte=1"`
	Cost             *float64 `json:"cost" validate:"omitempty,finite,gte=0,lte=1"`
}

// IdeaDetail is one idea with its integrity state and feedback summary.
type IdeaDetail struct {
	Idea           *idea.Idea              `json:"idea"`
	IntegrityScore float64                 `json:"integrity_score"`
	SignatureValid bool                    `json:"signature_valid"`
	ChainVerified  bool                    `json:"chain_verified"`
	Feedback       *database.FeedbackStats `json:"feedback,omitempty"`
}

// CreateIdea handles POST /api/v1/ideas. Inserted ideas answer 201,
// duplicates 409 and rejections 422 with the assessment as details.
func (h *Handler) CreateIdea(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req CreateIdeaRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.deps.Engine.AddIdea(r.Context(), recommend.NewIdea{
		Title:            req.Title,
		Description:      req.Description,
		Author:           req.Author,
		Tags:             req.Tags,
		Provenance:       req.Provenance,
		MarketSize:       req.MarketSize,
		RevenuePotential: req.RevenuePotential,
		Cost:             req.Cost,
	})
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidIdea) {
			rw.BadRequest(err.Error())
			return
		}
		logRequestError(r, "Failed to add idea", err)
		rw.InternalError("Failed to add idea")
		return
	}

	switch res.Outcome {
	case idea.Duplicate:
		rw.Conflict("An idea with this title already exists", res)
	case idea.Rejected:
		rw.Rejected("Idea rejected: "+res.Reason, res)
	default:
		rw.Created(res)
	}
}

// ListIdeas handles GET /api/v1/ideas. Optional query parameters: tag,
// limit (default 50, max 500) and offset.
func (h *Handler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ideas, err := h.deps.Store.ListIdeas(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	if tag := strings.TrimSpace(r.URL.Query().Get("tag")); tag != "" {
		filtered := ideas[:0]
		for _, i := range ideas {
			if i.HasTag(tag) {
				filtered = append(filtered, i)
			}
		}
		ideas = filtered
	}

	limit := getIntParam(r, "limit", defaultListLimit)
	if limit < 1 || limit > maxListLimit {
		limit = defaultListLimit
	}
	offset := max(0, getIntParam(r, "offset", 0))
	total := len(ideas)
	start := min(offset, total)
	end := min(start+limit, total)
	page := ideas[start:end]

	rw.SuccessWithPagination(page, &PaginationMeta{
		Total:   int64(total),
		Count:   len(page),
		Offset:  offset,
		Limit:   limit,
		HasMore: end < total,
	})
}

// GetIdea handles GET /api/v1/ideas/{id}.
func (h *Handler) GetIdea(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	i, err := h.deps.Store.GetIdea(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	detail := IdeaDetail{
		Idea:           i,
		IntegrityScore: integrity.Score(i, h.now()),
		SignatureValid: i.VerifySignature(),
	}
	if h.deps.Ledger != nil {
		detail.ChainVerified = h.deps.Ledger.VerifyIdeaHash(i.ID, i.HashSignature)
	}
	if stats, err := h.deps.Store.FeedbackStats(r.Context(), i.ID); err == nil {
		detail.Feedback = stats
	}
	rw.Success(detail)
}

// IdeaProvenance handles GET /api/v1/ideas/{id}/provenance.
func (h *Handler) IdeaProvenance(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.deps.Ledger == nil {
		rw.ServiceUnavailable("Provenance ledger is not enabled")
		return
	}

	i, err := h.deps.Store.GetIdea(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(rw, err)
		return
	}

	rw.Success(map[string]any{
		"idea_id":  i.ID,
		"blocks":   h.deps.Ledger.Provenance(i.ID),
		"verified": h.deps.Ledger.VerifyIdeaHash(i.ID, i.HashSignature),
	})
}

// IdeaFeedback handles GET /api/v1/ideas/{id}/feedback.
func (h *Handler) IdeaFeedback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx := r.Context()

	i, err := h.deps.Store.GetIdea(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	records, err := h.deps.Store.FeedbackForIdea(ctx, i.ID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	stats, err := h.deps.Store.FeedbackStats(ctx, i.ID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if records == nil {
		records = []*database.FeedbackRecord{}
	}

	rw.Success(map[string]any{
		"idea_id": i.ID,
		"rating":  i.Mutable(),
		"stats":   stats,
		"events":  records,
	})
}

// IdeaCausal handles GET /api/v1/ideas/{id}/causal.
func (h *Handler) IdeaCausal(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	explanation, err := h.deps.Engine.ExplainCausal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(rw, err)
		return
	}
	rw.Success(explanation)
}
