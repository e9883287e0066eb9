// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package features computes the per-idea signals consumed by the ranking
// pipeline: lexicon sentiment, keyword trend, freshness decay, ESG, ethics
// screening, economic feasibility, correlation-based causal impact, the
// relationship graph, and bias detection.
//
// Every function here is deterministic and free of I/O. Inputs that are
// missing or non-finite degrade to a neutral value instead of failing.
package features
