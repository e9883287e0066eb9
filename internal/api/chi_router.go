// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/ideaforge/internal/middleware"
)

// slowRequestThreshold marks requests logged at warn level.
const slowRequestThreshold = 2 * time.Second

// Router wires the handler into a chi route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware config uses the defaults.
func NewRouter(handler *Handler, cfg *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(cfg),
	}
}

// SetupChi builds the HTTP handler tree.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// Applied to every route, in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.AccessLog(slowRequestThreshold))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.chiMiddleware.Timeout())

		r.Route("/health", func(r chi.Router) {
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})

		r.Route("/ideas", func(r chi.Router) {
			r.Post("/", h.CreateIdea)
			r.Get("/", h.ListIdeas)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetIdea)
				r.Get("/provenance", h.IdeaProvenance)
				r.Get("/feedback", h.IdeaFeedback)
				r.Get("/causal", h.IdeaCausal)
			})
		})

		r.Post("/recommendations", h.Recommend)
		r.Post("/recommendations/scenarios", h.Scenarios)
		r.Get("/weights", h.Weights)

		r.Route("/feedback", func(r chi.Router) {
			r.Post("/rating", h.RateIdea)
			r.Post("/compare", h.CompareIdeas)
			r.Post("/review", h.ReviewIdea)
			r.Post("/federated", h.SubmitFederated)
		})
		r.Post("/federated/aggregate", h.AggregateFederated)
		r.Get("/federated/history", h.FederatedHistory)

		r.Post("/evaluate", h.Evaluate)
		r.Post("/evaluate/cross-validate", h.CrossValidate)
		r.Post("/optimize", h.Optimize)

		r.Route("/audit", func(r chi.Router) {
			r.Get("/report", h.AuditReport)
			r.Get("/integrity", h.AuditIntegrity)
			r.Get("/chain", h.AuditChain)
			r.Get("/events", h.AuditEvents)
		})

		r.Get("/ws", h.WebSocket)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	return r
}
