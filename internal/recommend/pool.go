// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/ideaforge/internal/features"
	"github.com/tomtom215/ideaforge/internal/generation"
	"github.com/tomtom215/ideaforge/internal/idea"
)

// GenerateCount is the number of drafts requested per generating call.
const GenerateCount = 3

// pool is the assembled candidate set for one request.
type pool struct {
	candidates []Candidate
	corpus     []*idea.Idea
	retrieved  int
	generated  int
	persisted  int

	// topSimilarity is the best retrieval similarity; hasRetrieved is
	// false when nothing was retrieved.
	topSimilarity float64
	hasRetrieved  bool
}

// ideas returns the pooled ideas in pool order.
func (p *pool) ideas() []*idea.Idea {
	out := make([]*idea.Idea, len(p.candidates))
	for i, c := range p.candidates {
		out[i] = c.Idea
	}
	return out
}

// serendipity is 1 minus the best retrieval similarity.
func (p *pool) serendipity() float64 {
	if !p.hasRetrieved {
		return neutralSerendipity
	}
	return features.Clamp(1-p.topSimilarity, 0, 1)
}

// queryText is the text embedded for retrieval: the query, or the tags
// when the query is empty.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func queryText(req Request) string {
	if req.Query != "" {
		return req.Query
	}
	return strings.Join(req.Tags, " ")
}

// buildPool retrieves the nearest ideas and, when requested, merges freshly
// generated ones. No scoring happens here.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildPool(ctx context.Context, req Request, generate bool) (*pool, error) {
	corpus, err := e.store.ListIdeas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	p := &pool{corpus: corpus}

	q := queryText(req)
	if q != "" && len(corpus) > 0 {
		emb, err := e.embedder.Embed(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		results, err := e.store.SearchSimilar(ctx, emb, retrievalK(e.cfg, req.K))
		if err != nil {
			return nil, fmt.Errorf("search similar: %w", err)
		}
		for _, r := range results {
			p.candidates = append(p.candidates, Candidate{Idea: r.Idea, Similarity: r.Similarity, Origin: OriginRetrieved})
		}
		p.retrieved = len(results)
		if len(results) > 0 {
			p.topSimilarity = results[0].Similarity
			p.hasRetrieved = true
		}
	}

	if generate && e.generator != nil {
		e.addGenerated(ctx, req, p)
	}
	return p, nil
}

// addGenerated merges generated drafts into the pool. Drafts that pass the
// quality gate are ingested; the rest join the pool as transient ideas.
// Generation failures leave the pool unchanged.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) addGenerated(ctx context.Context, req Request, p *pool) {
	theme := req.Query
	if theme == "" && len(req.Tags) > 0 {
		theme = req.Tags[0]
	}
	if theme == "" {
		return
	}

	log := e.logger.With().Str("request_id", req.RequestID).Str("generator", e.generator.Name()).Logger()
	res := e.generator.Generate(ctx, theme, GenerateCount)
	if !res.OK() {
		log.Warn().Err(res.Err).Msg("Idea generation failed, continuing with retrieved candidates")
		return
	}

	persist := make(map[string]bool)
	for _, d := range generation.Persistable(res.Ideas, p.corpus) {
		persist[d.Title] = true
	}

	for _, d := range res.Ideas {
		var cand *idea.Idea
		if persist[d.Title] {
			ing, err := e.AddIdea(ctx, NewIdea{
				Title:       d.Title,
				Description: d.Description,
				Author:      idea.DefaultAuthor,
				Tags:        d.Tags,
			})
			switch {
			case err != nil:
				log.Warn().Err(err).Str("title", d.Title).Msg("Failed to persist generated idea")
			case ing.Outcome == idea.Inserted:
				cand = ing.Idea.Clone()
				p.persisted++
			}
		}
		if cand == nil {
			t, err := e.transientIdea(ctx, d)
			if err != nil {
				log.Debug().Err(err).Str("title", d.Title).Msg("Dropping generated draft")
				continue
			}
			cand = t
		}
		if !cand.HasTag(OriginGenerated) {
			cand.Tags = append(cand.Tags, OriginGenerated)
		}
		p.candidates = append(p.candidates, Candidate{Idea: cand, Similarity: e.cfg.GeneratedSimilarity, Origin: OriginGenerated})
		p.generated++
	}
}

// transientIdea builds an unsaved idea from a draft with ingestion defaults.
func (e *Engine) transientIdea(ctx context.Context, d generation.Draft) (*idea.Idea, error) {
	emb, err := e.embedder.Embed(ctx, d.Description)
	if err != nil {
		return nil, fmt.Errorf("embed draft: %w", err)
	}
	now := e.now()
	i := &idea.Idea{
		ID:              idea.NewID(d.Title, now),
		Title:           d.Title,
		Description:     d.Description,
		Author:          idea.DefaultAuthor,
		Tags:            append([]string(nil), d.Tags...),
		EloRating:       idea.DefaultElo,
		BayesianMean:    idea.DefaultBayesianMean,
		Uncertainty:     idea.DefaultUncertainty,
		Sentiment:       features.Sentiment(d.Description),
		TrendScore:      features.Trend(d.Description, d.Tags),
		ProvenanceScore: idea.DefaultProvenance,
		Timestamp:       now,
		Embedding:       emb,
	}
	i.Sign()
	return i, nil
}
