// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package reranking implements diversity reranking for scored idea lists.
//
// Rerankers run after the composite scorer and reorder candidates to
// balance relevance against redundancy:
//
//	Scorer -> Initial Ranking -> MMR -> Explanations
//	(relevance)                 (diversity)
//
// # MMR Algorithm
//
// Maximal Marginal Relevance selects the most relevant item first, then
// repeatedly picks the remaining item maximizing:
//
//	lambda * score(i) - (1-lambda) * max_{s in selected} cos(e(i), e(s))
//
// Where:
//   - lambda: balance parameter (1.0 = pure relevance, 0.0 = pure diversity)
//   - score(i): relevance score for item i
//   - e(i): the item's embedding
//
// Named presets map to fixed lambdas:
//   - relevance: 0.8
//   - balanced: 0.5 (default)
//   - diversity: 0.2
//
// Ties are broken by input order, so identical inputs always produce the
// same selection.
//
// # Performance
//
// Each pick compares the remaining items against the most recently selected
// embedding only, keeping a running maximum per item. Time is O(k * n)
// cosine evaluations and space is O(n).
//
// # Thread Safety
//
// MMR is stateless apart from its lambda and is safe for concurrent use.
//
// # See Also
//
//   - internal/recommend: Engine that orchestrates reranking
//   - Carbonell & Goldstein (1998): "The Use of MMR" SIGIR paper
package reranking
