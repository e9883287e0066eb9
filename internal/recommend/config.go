// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package recommend

import (
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/recommend/reranking"
)

// Request limits.
const (
	MinK          = 1
	minRetrievalK = 10
	maxQueryLen   = 2000
	maxTags       = 20
)

// DefaultConfig returns the built-in engine settings.
func DefaultConfig() config.RecommendConfig {
	return config.Default().Recommend
}

// normalizeRequest applies defaults and bounds to a request.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func normalizeRequest(cfg config.RecommendConfig, req Request) Request {
	req.Query = strings.TrimSpace(req.Query)
	if r := []rune(req.Query); len(r) > maxQueryLen {
		req.Query = string(r[:maxQueryLen])
	}

	tags := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		if t = strings.TrimSpace(t); t != "" && len(tags) < maxTags {
			tags = append(tags, t)
		}
	}
	req.Tags = tags

	if req.K <= 0 {
		req.K = cfg.DefaultK
	}
	req.K = max(MinK, min(req.K, cfg.MaxK))
	req.View = ParseView(string(req.View))
	return req
}

// retrievalK is the number of ideas fetched by similarity search.
func retrievalK(cfg config.RecommendConfig, k int) int {
	return max(cfg.RetrievalK, 2*k, minRetrievalK)
}

// lambdaFor resolves the MMR lambda for a request preset, falling back to
// the configured lambda.
func lambdaFor(cfg config.RecommendConfig, preset string) float64 {
	if l, ok := reranking.PresetLambda(preset); ok {
		return l
	}
	return cfg.MMRLambda
}

// cacheKey identifies a request for the response cache. Generated pools are
// never cached.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func cacheKey(req Request) string {
	tags := append([]string(nil), req.Tags...)
	sort.Strings(tags)
	// JSON keeps field and tag boundaries unambiguous. Marshalling strings,
	// ints and bools cannot fail.
	key, _ := json.Marshal(struct {
		Query     string   `json:"q"`
		Tags      []string `json:"t"`
		K         int      `json:"k"`
		Diversify bool     `json:"d"`
		View      View     `json:"v"`
		Preset    string   `json:"p"`
	}{req.Query, tags, req.K, req.Diversify, req.View, req.Preset})
	return "rec:" + string(key)
}
