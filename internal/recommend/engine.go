// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/ideaforge/internal/cache"
	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/database"
	"github.com/tomtom215/ideaforge/internal/embedding"
	"github.com/tomtom215/ideaforge/internal/events"
	"github.com/tomtom215/ideaforge/internal/features"
	"github.com/tomtom215/ideaforge/internal/generation"
	"github.com/tomtom215/ideaforge/internal/idea"
	"github.com/tomtom215/ideaforge/internal/logging"
	"github.com/tomtom215/ideaforge/internal/metrics"
	"github.com/tomtom215/ideaforge/internal/recommend/reranking"
)

// responseCacheSize bounds the response cache when CacheTTL is set.
const responseCacheSize = 256

var (
	// ErrMissingDependency is returned by NewEngine without a store or embedder.
	ErrMissingDependency = errors.New("recommend: store and embedder are required")

	// ErrInvalidIdea is returned by AddIdea for an empty title or description.
	ErrInvalidIdea = errors.New("title and description are required")
)

// Store is the idea persistence the engine depends on. *database.DB
// implements it.
type Store interface {
	InsertIdea(ctx context.Context, i *idea.Idea) error
	GetIdea(ctx context.Context, id string) (*idea.Idea, error)
	ListIdeas(ctx context.Context) ([]*idea.Idea, error)
	SearchSimilar(ctx context.Context, query []float32, k int) ([]database.SearchResult, error)
	ReviewOutcomes(ctx context.Context) (map[string]float64, error)
	SaveVersion(ctx context.Context, v database.IdeaVersion) error
	StoreEmbedding(ctx context.Context, ideaID string, v []float32, metadata map[string]any) error
}

// Ledger records idea hashes in the provenance chain.
// *integrity.ChainStore implements it.
type Ledger interface {
	AddBlock(ideaID, ideaHash string, metadata map[string]any) (string, error)
	VerifyIdeaHash(ideaID, currentHash string) bool
}

// Deps are the engine's collaborators. Generator, Ledger and Events are
// optional.
type Deps struct {
	Store     Store
	Embedder  embedding.Embedder
	Generator generation.Generator
	Ledger    Ledger
	Events    events.Sink
}

// Engine runs the recommendation pipeline and idea ingestion.
// It is safe for concurrent use.
type Engine struct {
	cfg    config.RecommendConfig
	logger zerolog.Logger

	store     Store
	embedder  embedding.Embedder
	generator generation.Generator
	ledger    Ledger
	events    events.Sink

	weightsMu sync.RWMutex
	base      idea.Weights

	causalMu sync.RWMutex
	causal   *features.CausalModel

	ethicsLog *features.EthicsLog
	cache     *cache.LRU[*Response]

	requestCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	errorCount   atomic.Int64

	now func() time.Time
}

// Stats are engine counters.
type Stats struct {
	Requests      int64 `json:"requests"`
	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
	Errors        int64 `json:"errors"`
	EthicsChecks  int   `json:"ethics_checks"`
	CausalFitted  bool  `json:"causal_fitted"`
	CausalSamples int   `json:"causal_samples"`
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg config.RecommendConfig, deps Deps, logger zerolog.Logger) (*Engine, error) {
	if deps.Store == nil || deps.Embedder == nil {
		return nil, ErrMissingDependency
	}
	if deps.Events == nil {
		deps.Events = events.Nop{}
	}

	e := &Engine{
		cfg:       cfg,
		logger:    logger.With().Str("component", "recommend").Logger(),
		store:     deps.Store,
		embedder:  deps.Embedder,
		generator: deps.Generator,
		ledger:    deps.Ledger,
		events:    deps.Events,
		base:      idea.DefaultWeights(),
		causal:    features.NewCausalModel(),
		ethicsLog: &features.EthicsLog{},
		now:       idea.Now,
	}
	if cfg.CacheTTL > 0 {
		e.cache = cache.NewLRU[*Response](responseCacheSize, cfg.CacheTTL)
	}
	return e, nil
}

// Config returns the engine settings.
func (e *Engine) Config() config.RecommendConfig {
	return e.cfg
}

// Weights returns the current base weights.
func (e *Engine) Weights() idea.Weights {
	e.weightsMu.RLock()
	defer e.weightsMu.RUnlock()
	return e.base
}

// SetBaseWeights replaces the base weights with w normalized and clears
// the response cache.
func (e *Engine) SetBaseWeights(w idea.Weights) {
	w = w.Normalize()
	e.weightsMu.Lock()
	e.base = w
	e.weightsMu.Unlock()

	e.InvalidateCache()
	e.events.Publish(context.Background(), events.Event{
		Type: events.WeightsUpdated,
		Data: map[string]any{"weights": w.Map()},
	})
	e.logger.Info().Interface("weights", w.Map()).Msg("Base weights updated")
}

// InvalidateCache drops cached responses. Rating changes call it.
func (e *Engine) InvalidateCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// EthicsLog returns the append-only ingestion ethics log.
func (e *Engine) EthicsLog() *features.EthicsLog {
	return e.ethicsLog
}

// Stats returns engine counters.
func (e *Engine) Stats() Stats {
	e.causalMu.RLock()
	fitted, samples := e.causal.Fitted(), e.causal.Samples()
	e.causalMu.RUnlock()
	return Stats{
		Requests:      e.requestCount.Load(),
		CacheHits:     e.cacheHits.Load(),
		CacheMisses:   e.cacheMisses.Load(),
		Errors:        e.errorCount.Load(),
		EthicsChecks:  e.ethicsLog.Len(),
		CausalFitted:  fitted,
		CausalSamples: samples,
	}
}

// Recommend runs the full pipeline: pool, score, view ordering, optional
// MMR, and explanations.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	req = e.prepareRequest(ctx, req)
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("view", string(req.View)).
		Int("k", req.K).
		Logger()
	logger.Debug().Msg("Processing recommendation request")

	if resp := e.tryGetCachedResponse(req, start); resp != nil {
		logger.Debug().Msg("Cache hit")
		return resp, nil
	}

	p, err := e.buildPool(ctx, req, req.Generate)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("build pool: %w", err)
	}
	if len(p.candidates) == 0 {
		logger.Debug().Msg("No candidates available")
		return e.emptyResponse(req, p, start), nil
	}

	scorer := e.newScorer(req, p)
	scored := make([]*Scored, len(p.candidates))
	for i, c := range p.candidates {
		scored[i] = scorer.Score(c)
		if !c.Idea.VerifySignature() && c.Origin == OriginRetrieved {
			e.integrityAlert(ctx, c.Idea)
		}
	}

	applyView(req.View, scored)
	ranked := e.selectResults(req, scored)

	resp := &Response{
		Results:  make([]Recommendation, 0, len(ranked)),
		Metadata: e.buildMetadata(req, p, start),
	}
	for n, s := range ranked {
		resp.Results = append(resp.Results, e.toRecommendation(n+1, s))
	}
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()

	metrics.RecordRecommendation(string(req.View), req.Generate, len(p.candidates), time.Since(start))
	e.events.Publish(ctx, events.Event{
		Type:      events.RecommendationMade,
		RequestID: req.RequestID,
		Data: map[string]any{
			"query":   req.Query,
			"view":    string(req.View),
			"results": resultIDs(resp.Results),
		},
	})
	e.cacheResponse(req, resp)

	logger.Debug().
		Int("candidates", len(p.candidates)).
		Int("generated", p.generated).
		Int("returned", len(resp.Results)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("Recommendation complete")

	return resp, nil
}

// prepareRequest applies defaults and sets the request ID from the context
// or a fresh UUID.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(ctx context.Context, req Request) Request {
	req = normalizeRequest(e.cfg, req)
	if req.RequestID == "" {
		req.RequestID = logging.RequestIDFromContext(ctx)
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	return req
}

// newScorer builds the per-request scorer. Bias is measured over the whole
// corpus, influence over the pool.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) newScorer(req Request, p *pool) *Scorer {
	bias := features.DetectBias(p.corpus)
	influence := features.BuildGraph(p.ideas(), features.DefaultEdgeThreshold).Influence()

	e.causalMu.RLock()
	causal := e.causal
	e.causalMu.RUnlock()

	s := NewScorer(e.cfg, e.Weights(), domainFor(e.cfg.Domain, req.Tags), &bias, causal, influence, e.now())
	s.Serendipity = p.serendipity()
	return s
}

// applyView sets ViewScore and RankScore. Consensus is an equal blend of
// four scores: the composite Final score plus the user, market and swot
// view scores. A named view orders by its own score alone.
// View scores carry the ethics factor so blocked ideas never rise.
func applyView(v View, scored []*Scored) {
	if v != ViewConsensus {
		for _, s := range scored {
			s.ViewScore = ViewScore(v, s.Components) * s.Ethics.AdjustmentFactor
			s.RankScore = s.ViewScore
		}
		return
	}

	perView := make([][]float64, 4)
	for i := range perView {
		perView[i] = make([]float64, len(scored))
	}
	for i, s := range scored {
		f := s.Ethics.AdjustmentFactor
		perView[0][i] = s.Final
		perView[1][i] = ViewScore(ViewUser, s.Components) * f
		perView[2][i] = ViewScore(ViewMarket, s.Components) * f
		perView[3][i] = ViewScore(ViewSwot, s.Components) * f
	}
	for i, b := range BlendViews(perView, nil) {
		scored[i].ViewScore = b
		scored[i].RankScore = b
	}
}

// selectResults orders by RankScore (stable on pool order) and takes K,
// through MMR when diversification is requested.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) selectResults(req Request, scored []*Scored) []*Scored {
	scores := make([]float64, len(scored))
	for i, s := range scored {
		scores[i] = s.RankScore
	}
	idx := order(scores)

	if !req.Diversify {
		out := make([]*Scored, 0, min(req.K, len(idx)))
		for _, i := range idx[:min(req.K, len(idx))] {
			out = append(out, scored[i])
		}
		return out
	}

	items := make([]reranking.Item, len(idx))
	for n, i := range idx {
		items[n] = reranking.Item{
			ID:        scored[i].Idea.ID,
			Score:     scored[i].RankScore,
			Embedding: scored[i].Idea.Embedding,
			Index:     i,
		}
	}
	picked := reranking.NewMMR(lambdaFor(e.cfg, req.Preset)).Rerank(context.Background(), items, req.K)
	out := make([]*Scored, len(picked))
	for n, it := range picked {
		out[n] = scored[it.Index]
	}
	return out
}

func (e *Engine) toRecommendation(rank int, s *Scored) Recommendation {
	i := s.Idea
	verified := false
	if e.ledger != nil && s.Origin == OriginRetrieved {
		verified = e.ledger.VerifyIdeaHash(i.ID, i.HashSignature)
	}
	return Recommendation{
		Rank:          rank,
		ID:            i.ID,
		Title:         i.Title,
		Summary:       i.Summary(),
		Description:   i.Description,
		Tags:          i.Tags,
		Author:        i.Author,
		Origin:        s.Origin,
		Score:         s.Final,
		ViewScore:     s.ViewScore,
		RankScore:     s.RankScore,
		ESG:           s.ESG.Total,
		Integrity:     s.Integrity,
		EthicsFactor:  s.Ethics.AdjustmentFactor,
		Feasibility:   s.Feasibility.Score(),
		CausalImpact:  s.CausalImpact,
		ChainVerified: verified,
		Explanation:   Explain(s, e.cfg),
	}
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildMetadata(req Request, p *pool, start time.Time) ResponseMetadata {
	md := ResponseMetadata{
		RequestID:   req.RequestID,
		View:        req.View,
		K:           req.K,
		Diversified: req.Diversify,
		Candidates:  len(p.candidates),
		Generated:   p.generated,
		Persisted:   p.persisted,
		BaseWeights: e.Weights(),
		LatencyMS:   time.Since(start).Milliseconds(),
		Timestamp:   time.Now().UTC(),
	}
	if req.Diversify {
		md.Lambda = lambdaFor(e.cfg, req.Preset)
	}
	md.BiasDetected = features.DetectBias(p.corpus).BiasDetected
	return md
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) emptyResponse(req Request, p *pool, start time.Time) *Response {
	return &Response{
		Results:  []Recommendation{},
		Metadata: e.buildMetadata(req, p, start),
	}
}

// tryGetCachedResponse returns a copy of a cached response. Generating
// requests are never served from cache.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) tryGetCachedResponse(req Request, start time.Time) *Response {
	if e.cache == nil || req.Generate {
		return nil
	}
	cached, ok := e.cache.Get(cacheKey(req))
	if !ok {
		e.cacheMisses.Add(1)
		return nil
	}
	e.cacheHits.Add(1)

	resp := &Response{
		Results:  append([]Recommendation(nil), cached.Results...),
		Metadata: cached.Metadata,
	}
	resp.Metadata.RequestID = req.RequestID
	resp.Metadata.CacheHit = true
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	return resp
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) cacheResponse(req Request, resp *Response) {
	if e.cache == nil || req.Generate {
		return
	}
	e.cache.Add(cacheKey(req), resp)
}

func (e *Engine) integrityAlert(ctx context.Context, i *idea.Idea) {
	logging.Ctx(ctx).Warn().Str("idea_id", i.ID).Msg("Idea hash signature mismatch")
	e.events.Publish(ctx, events.Event{
		Type:    events.IntegrityAlert,
		IdeaID:  i.ID,
		Outcome: "tampered",
	})
}

// RankIdeas scores ideas with the composite pipeline under base weights w
// and returns their ids in descending score order. No retrieval or
// generation happens. Its signature matches evaluation.WeightedRanker.
func (e *Engine) RankIdeas(ctx context.Context, w idea.Weights, ideas []*idea.Idea) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.causalMu.RLock()
	causal := e.causal
	e.causalMu.RUnlock()

	bias := features.DetectBias(ideas)
	influence := features.BuildGraph(ideas, features.DefaultEdgeThreshold).Influence()
	s := NewScorer(e.cfg, w, e.cfg.Domain, &bias, causal, influence, e.now())

	scores := make([]float64, len(ideas))
	for n, i := range ideas {
		scores[n] = s.Score(Candidate{Idea: i, Origin: OriginRetrieved}).Final
	}
	out := make([]string, 0, len(ideas))
	for _, n := range order(scores) {
		out = append(out, ideas[n].ID)
	}
	return out, nil
}

// RankCurrent is RankIdeas under the current base weights. It fits
// evaluation.FoldRanker by ranking the test fold.
func (e *Engine) RankCurrent(ctx context.Context, _, test []*idea.Idea) ([]string, error) {
	return e.RankIdeas(ctx, e.Weights(), test)
}

// ScenarioRequest asks for what-if rankings over a query's pool.
type ScenarioRequest struct {
	Query   string   `json:"query"`
	Tags    []string `json:"tags,omitempty"`
	K       int      `json:"k"`
	Feature string   `json:"feature,omitempty"`
}

// Scenarios ranks the retrieved pool under each default scenario, compares
// them, and runs a sensitivity sweep when a feature is named.
func (e *Engine) Scenarios(ctx context.Context, sr ScenarioRequest) (*ScenarioReport, error) {
	req := e.prepareRequest(ctx, Request{Query: sr.Query, Tags: sr.Tags, K: sr.K})
	p, err := e.buildPool(ctx, req, false)
	if err != nil {
		return nil, fmt.Errorf("build pool: %w", err)
	}

	scorer := e.newScorer(req, p)
	ideas := p.ideas()
	components := make([]idea.Vector, len(ideas))
	for n, i := range ideas {
		components[n] = scorer.Components(i)
	}

	base := e.Weights()
	report := &ScenarioReport{Scenarios: make([]ScenarioResult, 0, len(DefaultScenarios))}
	for _, s := range DefaultScenarios {
		report.Scenarios = append(report.Scenarios, RunScenario(s, base, ideas, components))
	}
	report.Comparison = CompareScenarios(report.Scenarios)

	if f, ok := idea.ParseFeature(sr.Feature); ok {
		report.Feature = f.String()
		report.Sensitivity = Sensitivity(f, base, ideas, components)
	}
	return report, nil
}

// RefitCausal refits the causal model from review outcomes in the feedback
// log. It returns the number of samples used.
func (e *Engine) RefitCausal(ctx context.Context) (int, error) {
	outcomes, err := e.store.ReviewOutcomes(ctx)
	if err != nil {
		return 0, fmt.Errorf("review outcomes: %w", err)
	}
	ideas, err := e.store.ListIdeas(ctx)
	if err != nil {
		return 0, fmt.Errorf("list ideas: %w", err)
	}

	feats := map[string][]float64{}
	var ys []float64
	for _, i := range ideas {
		y, ok := outcomes[i.ID]
		if !ok {
			continue
		}
		for k, v := range features.CausalInputs(i) {
			feats[k] = append(feats[k], v)
		}
		ys = append(ys, y)
	}

	m := features.NewCausalModel()
	if err := m.Fit(feats, ys); err != nil {
		return 0, fmt.Errorf("fit causal model: %w", err)
	}

	e.causalMu.Lock()
	e.causal = m
	e.causalMu.Unlock()
	e.InvalidateCache()

	e.logger.Info().Int("samples", len(ys)).Strs("drivers", m.Drivers()).Msg("Causal model refitted")
	return len(ys), nil
}

// ExplainCausal returns the causal paths for a stored idea.
func (e *Engine) ExplainCausal(ctx context.Context, id string) (features.CausalExplanation, error) {
	i, err := e.store.GetIdea(ctx, id)
	if err != nil {
		return features.CausalExplanation{}, err
	}
	e.causalMu.RLock()
	defer e.causalMu.RUnlock()
	return e.causal.Explain(i.ID, features.CausalInputs(i)), nil
}

// AddIdea runs the ingestion pipeline: adversarial filter, ethics screen,
// embedding and signals, store insert, feasibility, temporal and version
// snapshots, chain block and notification. Duplicates and rejections are
// outcomes, not errors.
func (e *Engine) AddIdea(ctx context.Context, in NewIdea) (*IngestResult, error) {
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	if title == "" || desc == "" {
		return nil, ErrInvalidIdea
	}
	author := strings.TrimSpace(in.Author)
	if author == "" {
		author = idea.DefaultAuthor
	}
	tags := cleanTags(in.Tags)
	log := logging.Ctx(ctx).With().Str("component", "recommend").Str("title", title).Logger()

	sentiment := features.Sentiment(desc)
	trend := features.Trend(desc, tags)
	if features.IsAdversarial(desc, sentiment, trend) {
		metrics.RecordIngest(idea.Rejected.String())
		e.publishIngest(ctx, events.IdeaRejected, "", ReasonAdversarial)
		log.Info().Str("reason", ReasonAdversarial).Msg("Idea rejected")
		return &IngestResult{Outcome: idea.Rejected, Reason: ReasonAdversarial}, nil
	}

	esg := features.ScoreESG(title, desc)
	ethics := features.AssessEthics(title+" "+desc, tags, esg.Total)
	e.ethicsLog.Append(ethics)
	metrics.RecordEthicsDecision(string(ethics.Action))
	if ethics.Flagged && ethics.Severity == features.SeverityHigh {
		metrics.RecordIngest(idea.Rejected.String())
		e.publishIngest(ctx, events.IdeaRejected, "", ReasonEthics)
		log.Info().Str("reason", ReasonEthics).Msg("Idea rejected")
		return &IngestResult{
			Outcome:          idea.Rejected,
			Reason:           ReasonEthics,
			Ethics:           &ethics,
			AdjustmentFactor: ethics.AdjustmentFactor,
		}, nil
	}

	emb, err := e.embedder.Embed(ctx, desc)
	if err != nil {
		return nil, fmt.Errorf("embed idea: %w", err)
	}

	now := e.now()
	provenance := idea.DefaultProvenance
	if in.Provenance != nil {
		provenance = features.Sanitize(*in.Provenance, 0, 1, idea.DefaultProvenance)
	}
	i := &idea.Idea{
		ID:              idea.NewID(title, now),
		Title:           title,
		Description:     desc,
		Author:          author,
		Tags:            tags,
		EloRating:       idea.DefaultElo,
		BayesianMean:    idea.DefaultBayesianMean,
		Uncertainty:     idea.DefaultUncertainty,
		Sentiment:       sentiment,
		TrendScore:      trend,
		ProvenanceScore: provenance,
		Timestamp:       now,
		Embedding:       emb,
	}
	i.Sign()

	if err := e.store.InsertIdea(ctx, i); err != nil {
		if errors.Is(err, idea.ErrDuplicate) {
			metrics.RecordIngest(idea.Duplicate.String())
			e.publishIngest(ctx, events.IdeaDuplicate, "", "")
			return &IngestResult{Outcome: idea.Duplicate, Ethics: &ethics, AdjustmentFactor: ethics.AdjustmentFactor}, nil
		}
		return nil, fmt.Errorf("insert idea: %w", err)
	}

	feas := features.AnalyzeFeasibility(feasibilityInputs(i, in))

	if err := e.store.StoreEmbedding(ctx, i.ID, emb, map[string]any{
		"title": title, "author": author, "tags": tags,
	}); err != nil {
		log.Warn().Err(err).Str("idea_id", i.ID).Msg("Failed to store temporal embedding")
	}
	if err := e.store.SaveVersion(ctx, database.SnapshotOf(i, "created", now)); err != nil {
		log.Warn().Err(err).Str("idea_id", i.ID).Msg("Failed to save idea version")
	}

	var chainHash string
	if e.ledger != nil {
		chainHash, err = e.ledger.AddBlock(i.ID, i.HashSignature, map[string]any{
			"title":             title,
			"author":            author,
			"ethics_score":      ethics.EthicalScore,
			"feasibility_score": feas.Score(),
		})
		if err != nil {
			log.Warn().Err(err).Str("idea_id", i.ID).Msg("Failed to append provenance block")
		}
	}

	e.InvalidateCache()
	metrics.RecordIngest(idea.Inserted.String())
	e.publishIngest(ctx, events.IdeaAdded, i.ID, "")
	log.Info().Str("idea_id", i.ID).Str("chain_hash", chainHash).Msg("Idea added")

	return &IngestResult{
		Outcome:          idea.Inserted,
		ID:               i.ID,
		ChainHash:        chainHash,
		Ethics:           &ethics,
		Feasibility:      &feas,
		AdjustmentFactor: ethics.AdjustmentFactor,
		Idea:             i,
	}, nil
}

func (e *Engine) publishIngest(ctx context.Context, t events.Type, id, reason string) {
	ev := events.Event{Type: t, IdeaID: id, RequestID: logging.RequestIDFromContext(ctx)}
	if reason != "" {
		ev.Outcome = reason
	}
	e.events.Publish(ctx, ev)
}

func feasibilityInputs(i *idea.Idea, in NewIdea) features.FeasibilityInputs {
	f := features.DefaultFeasibilityInputs()
	f.Trend = i.TrendScore
	f.Sentiment = i.Sentiment
	f.Uncertainty = i.Uncertainty
	f.Provenance = i.ProvenanceScore
	if in.MarketSize != nil {
		f.MarketSize = *in.MarketSize
	}
	if in.RevenuePotential != nil {
		f.RevenuePotential = *in.RevenuePotential
	}
	if in.Cost != nil {
		f.Cost = *in.Cost
	}
	return f
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

func resultIDs(rs []Recommendation) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}
