// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package recommend ranks stored and freshly generated ideas for a query.
//
// # Pipeline
//
// A request flows through these stages:
//
//   - Pool: the query is embedded and the nearest stored ideas retrieved.
//     With Generate set, generator drafts are merged in. Drafts that pass
//     the quality gate are ingested through AddIdea, the rest stay transient.
//   - Components: each candidate gets a nine-feature vector (elo, bayesian
//     mean, uncertainty, sentiment, provenance, freshness, trend, causal
//     impact, serendipity).
//   - Weights: base weights adapt per candidate to domain, volatility, data
//     quality, the fairness toggle and corpus bias.
//   - Score: the linear score is blended with ESG, multiplied by the ethics
//     factor, blended with feasibility and causal impact, then boosted by
//     integrity.
//   - Order: consensus blends the composite score with the user, market and
//     swot view scores; a named view orders by its own score. MMR reranking
//     is optional.
//   - Explain: every result carries top features, counterfactuals and a
//     per-feature breakdown.
//
// # Determinism
//
// With a deterministic embedder and generator, the same store contents and
// request produce the same ranking. Ties keep pool order.
//
// # Usage
//
//	eng, err := recommend.NewEngine(cfg.Recommend, recommend.Deps{
//	    Store:     db,
//	    Embedder:  embedding.NewHashEmbedder(384),
//	    Generator: generation.NewRuleGenerator(),
//	    Ledger:    chain,
//	}, logger)
//	resp, err := eng.Recommend(ctx, recommend.Request{Query: "solar", K: 5})
//
// # Thread Safety
//
// Engine is safe for concurrent use. Base weights and the causal model are
// swapped under locks; Scorer values are per request.
package recommend
