// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package validation checks decoded API request bodies with
// go-playground/validator v10.
//
// A single validator is built once and shared, so struct metadata is
// parsed only the first time a request type is seen. Errors name fields by
// their JSON names and translate into the API error envelope:
//
//	type rateRequest struct {
//	    IdeaID string `json:"idea_id" validate:"required,ideaid"`
//	    Rating int    `json:"rating" validate:"min=1,max=5"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
//
// Besides the built-in tags, "finite", "ideaid" and "feature" are
// registered for ranking inputs.
package validation
