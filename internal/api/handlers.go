// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ideaforge/internal/audit"
	"github.com/tomtom215/ideaforge/internal/database"
	"github.com/tomtom215/ideaforge/internal/evaluation"
	"github.com/tomtom215/ideaforge/internal/features"
	"github.com/tomtom215/ideaforge/internal/federated"
	"github.com/tomtom215/ideaforge/internal/feedback"
	"github.com/tomtom215/ideaforge/internal/idea"
	"github.com/tomtom215/ideaforge/internal/integrity"
	"github.com/tomtom215/ideaforge/internal/logging"
	"github.com/tomtom215/ideaforge/internal/recommend"
	"github.com/tomtom215/ideaforge/internal/validation"
	"github.com/tomtom215/ideaforge/internal/websocket"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrMissingDependency is returned by NewHandler without a store or engine.
var ErrMissingDependency = errors.New("api: store and engine are required")

// IdeaStore is the read side of the idea store. *database.DB implements it.
type IdeaStore interface {
	Ping(ctx context.Context) error
	GetIdea(ctx context.Context, id string) (*idea.Idea, error)
	ListIdeas(ctx context.Context) ([]*idea.Idea, error)
	FeedbackForIdea(ctx context.Context, ideaID string) ([]*database.FeedbackRecord, error)
	FeedbackStats(ctx context.Context, ideaID string) (*database.FeedbackStats, error)
}

// Engine ranks and ingests ideas. *recommend.Engine implements it.
type Engine interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Scenarios(ctx context.Context, sr recommend.ScenarioRequest) (*recommend.ScenarioReport, error)
	AddIdea(ctx context.Context, in recommend.NewIdea) (*recommend.IngestResult, error)
	ExplainCausal(ctx context.Context, id string) (features.CausalExplanation, error)
	RankCurrent(ctx context.Context, train, test []*idea.Idea) ([]string, error)
	Weights() idea.Weights
	Stats() recommend.Stats
}

// Feedback applies ratings and federated updates. *feedback.Service
// implements it.
type Feedback interface {
	Rate(ctx context.Context, ideaID string, stars int) (*feedback.Result, error)
	Compare(ctx context.Context, ideaA, ideaB string, p feedback.Preference) (*feedback.Result, error)
	SubmitReview(ctx context.Context, ideaID string, r feedback.Review) (*feedback.Result, error)
	SubmitFederated(u feedback.FederatedUpdate) (string, error)
	AggregateFederated(ctx context.Context, method string) (*feedback.FederatedResult, error)
	FederatedHistory() []federated.Round
}

// Ledger is the provenance chain. *integrity.ChainStore implements it.
type Ledger interface {
	Provenance(ideaID string) []integrity.Block
	VerifyIdeaHash(ideaID, currentHash string) bool
	Verify() integrity.VerifyResult
	Summary() integrity.Summary
	Export() []integrity.Block
}

// Optimizer runs weight meta-learning. *evaluation.Service implements it.
type Optimizer interface {
	Run(ctx context.Context, req evaluation.RunRequest) (*evaluation.RunResult, error)
}

// Reporter builds audit reports. *audit.Reporter implements it.
type Reporter interface {
	Build(ctx context.Context) (*audit.Report, error)
}

// AuditStore is the audit event query surface.
type AuditStore interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	Count(ctx context.Context, filter audit.QueryFilter) (int64, error)
}

// Deps are the collaborators of the HTTP handlers. Store and Engine are
// required; endpoints whose collaborator is nil answer 503.
type Deps struct {
	Store       IdeaStore
	Engine      Engine
	Feedback    Feedback
	Ledger      Ledger
	Optimizer   Optimizer
	Reporter    Reporter
	AuditStore  AuditStore
	AuditLogger *audit.Logger
	Hub         *websocket.Hub
}

// Handler serves the Ideaforge HTTP API.
type Handler struct {
	deps        Deps
	corsOrigins []string
	startTime   time.Time
	now         func() time.Time
}

// NewHandler creates the API handler. corsOrigins also gate websocket
// upgrades.
func NewHandler(deps Deps, corsOrigins []string) (*Handler, error) {
	if deps.Store == nil || deps.Engine == nil {
		return nil, ErrMissingDependency
	}
	return &Handler{
		deps:        deps,
		corsOrigins: corsOrigins,
		startTime:   time.Now(),
		now:         idea.Now,
	}, nil
}

// sanitizeLogValue removes control characters from strings to prevent log
// injection.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// decodeAndValidate reads a JSON body into v and runs struct validation.
// It writes the error response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	rw := NewResponseWriter(w, r)
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		rw.BadRequest("Failed to read request body")
		return false
	}
	if len(body) > maxBodyBytes {
		rw.Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large")
		return false
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, v); err != nil {
		rw.BadRequest("Invalid JSON body")
		return false
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getTimeParam parses an RFC 3339 query parameter.
func getTimeParam(r *http.Request, key string) *time.Time {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}

// writeStoreError maps store errors onto responses.
func writeStoreError(rw *ResponseWriter, err error) {
	if errors.Is(err, idea.ErrNotFound) {
		rw.NotFound("Idea not found")
		return
	}
	rw.DatabaseError(err)
}

// logAdmin records an operator action when audit logging is wired.
func (h *Handler) logAdmin(r *http.Request, action, description string, metadata map[string]any) {
	if h.deps.AuditLogger == nil {
		return
	}
	h.deps.AuditLogger.LogAdminAction(r.Context(), audit.SourceFromRequest(r), action, description, metadata)
}

func logRequestError(r *http.Request, msg string, err error) {
	logging.Ctx(r.Context()).Error().Str("error", sanitizeLogValue(err.Error())).Msg(msg)
}
