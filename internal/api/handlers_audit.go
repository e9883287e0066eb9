// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/ideaforge/internal/audit"
	"github.com/tomtom215/ideaforge/internal/integrity"
)

const maxAuditExport = 10000

// AuditReport handles GET /api/v1/audit/report.
func (h *Handler) AuditReport(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.deps.Reporter == nil {
		rw.ServiceUnavailable("Audit reporting is not enabled")
		return
	}

	report, err := h.deps.Reporter.Build(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(report)
}

// AuditIntegrity handles GET /api/v1/audit/integrity. It recomputes every
// idea signature and verifies the provenance chain.
func (h *Handler) AuditIntegrity(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ideas, err := h.deps.Store.ListIdeas(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	now := h.now()
	avg, _ := integrity.AverageScore(ideas, now)
	resp := map[string]any{
		"signatures":              integrity.ValidateAll(ideas, now),
		"average_integrity_score": avg,
	}
	if h.deps.Ledger != nil {
		resp["chain"] = h.deps.Ledger.Verify()
	}
	rw.Success(resp)
}

// AuditChain handles GET /api/v1/audit/chain. With export=true every
// block is returned.
func (h *Handler) AuditChain(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.deps.Ledger == nil {
		rw.ServiceUnavailable("Provenance ledger is not enabled")
		return
	}

	resp := map[string]any{"summary": h.deps.Ledger.Summary()}
	if r.URL.Query().Get("export") == "true" {
		resp["blocks"] = h.deps.Ledger.Export()
	}
	rw.Success(resp)
}

// AuditEvents handles GET /api/v1/audit/events. Filters: type, severity and
// outcome (repeatable), target_id, actor_id, request_id, search,
// start_time and end_time (RFC 3339), order_direction, limit and offset.
// format=cef or format=json returns a download instead of the envelope.
func (h *Handler) AuditEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.deps.AuditStore == nil {
		rw.ServiceUnavailable("Audit log is not enabled")
		return
	}

	filter := auditFilterFromRequest(r)
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format != "" {
		filter.Limit = maxAuditExport
		filter.Offset = 0
	}

	events, err := h.deps.AuditStore.Query(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	if format != "" {
		exporter := audit.ExporterFor(format)
		data, err := exporter.Export(events)
		if err != nil {
			logRequestError(r, "Failed to export audit events", err)
			rw.InternalError("Failed to export audit events")
			return
		}
		ext := "json"
		if format == "cef" {
			ext = "cef"
		}
		w.Header().Set("Content-Type", exporter.ContentType())
		w.Header().Set("Content-Disposition", `attachment; filename="audit-events.`+ext+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	total, err := h.deps.AuditStore.Count(r.Context(), filter)
	if err != nil {
		total = int64(len(events))
	}
	if events == nil {
		events = []audit.Event{}
	}
	rw.SuccessWithPagination(events, &PaginationMeta{
		Total:   total,
		Count:   len(events),
		Offset:  filter.Offset,
		Limit:   filter.Limit,
		HasMore: int64(filter.Offset+len(events)) < total,
	})
}

func auditFilterFromRequest(r *http.Request) audit.QueryFilter {
	q := r.URL.Query()
	filter := audit.DefaultQueryFilter()

	if limit := getIntParam(r, "limit", 0); limit > 0 && limit <= maxAuditExport {
		filter.Limit = limit
	}
	if offset := getIntParam(r, "offset", 0); offset > 0 {
		filter.Offset = offset
	}
	for _, t := range q["type"] {
		filter.Types = append(filter.Types, audit.EventType(t))
	}
	for _, s := range q["severity"] {
		filter.Severities = append(filter.Severities, audit.Severity(s))
	}
	for _, o := range q["outcome"] {
		filter.Outcomes = append(filter.Outcomes, audit.Outcome(o))
	}
	filter.ActorID = q.Get("actor_id")
	filter.TargetID = q.Get("target_id")
	filter.RequestID = q.Get("request_id")
	filter.CorrelationID = q.Get("correlation_id")
	filter.SearchText = q.Get("search")
	filter.StartTime = getTimeParam(r, "start_time")
	filter.EndTime = getTimeParam(r, "end_time")
	filter.OrderDesc = q.Get("order_direction") != "asc"
	return filter
}
