// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package database

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/ideaforge/internal/features"
	"github.com/tomtom215/ideaforge/internal/idea"
	"github.com/tomtom215/ideaforge/internal/logging"
)

// SearchResult pairs an idea with its cosine similarity to the query.
type SearchResult struct {
	Idea       *idea.Idea `json:"idea"`
	Similarity float64    `json:"similarity"`
}

// flatIndex holds unit-normalized float64 copies of every embedding in
// corpus order (created_at, id).
type flatIndex struct {
	version int64
	ids     []string
	unit    [][]float64
}

// SearchSimilar returns the k ideas most similar to query by cosine
// similarity, highest first. Ties keep corpus order. k <= 0 returns all.
func (db *DB) SearchSimilar(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	n, err := db.CountIdeas(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	if n < db.IndexThreshold() {
		return db.searchBrute(ctx, query, k)
	}
	return db.searchIndexed(ctx, query, k)
}

// searchBrute scores every stored idea directly.
func (db *DB) searchBrute(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	ideas, err := db.ListIdeas(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]SearchResult, len(ideas))
	for j, i := range ideas {
		results[j] = SearchResult{Idea: i, Similarity: features.Cosine(query, i.Embedding)}
	}
	return topK(results, k), nil
}

// searchIndexed scores against the flat index and loads only the winners.
func (db *DB) searchIndexed(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	idx, err := db.ensureIndex(ctx)
	if err != nil {
		return nil, err
	}

	q := unitVector(query)
	scored := make([]SearchResult, len(idx.ids))
	for j, id := range idx.ids {
		scored[j] = SearchResult{Idea: &idea.Idea{ID: id}, Similarity: dot64(q, idx.unit[j])}
	}
	scored = topK(scored, k)

	ids := make([]string, len(scored))
	for j, r := range scored {
		ids[j] = r.Idea.ID
	}
	loaded, err := db.getIdeasByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := scored[:0]
	for _, r := range scored {
		if i, ok := loaded[r.Idea.ID]; ok {
			out = append(out, SearchResult{Idea: i, Similarity: r.Similarity})
		}
	}
	return out, nil
}

// ensureIndex rebuilds the flat index when ideas were inserted since the
// last build.
func (db *DB) ensureIndex(ctx context.Context) (*flatIndex, error) {
	db.indexMu.Lock()
	defer db.indexMu.Unlock()

	v := db.version()
	if db.index != nil && db.index.version == v {
		return db.index, nil
	}

	start := time.Now()
	ideas, err := db.ListIdeas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build similarity index: %w", err)
	}
	idx := &flatIndex{
		version: v,
		ids:     make([]string, len(ideas)),
		unit:    make([][]float64, len(ideas)),
	}
	for j, i := range ideas {
		idx.ids[j] = i.ID
		idx.unit[j] = unitVector(i.Embedding)
	}
	db.index = idx

	logging.Debug().Int("ideas", len(ideas)).Dur("took", time.Since(start)).Msg("Similarity index rebuilt")
	return idx, nil
}

func (db *DB) getIdeasByID(ctx context.Context, ids []string) (map[string]*idea.Idea, error) {
	out := make(map[string]*idea.Idea, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for j, id := range ids {
		args[j] = id
	}

	rows, err := db.conn.QueryContext(ctx, `SELECT `+ideaColumns+` FROM ideas WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load ideas: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		i, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan idea: %w", err)
		}
		out[i.ID] = i
	}
	return out, rows.Err()
}

func topK(results []SearchResult, k int) []SearchResult {
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Similarity > results[b].Similarity
	})
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// unitVector returns v scaled to unit length in float64, or nil for a
// zero or empty vector.
func unitVector(v []float32) []float64 {
	var n float64
	for _, x := range v {
		n += float64(x) * float64(x)
	}
	if n == 0 {
		return nil
	}
	inv := 1 / math.Sqrt(n)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x) * inv
	}
	return out
}

// dot64 mirrors features.Cosine: mismatched lengths score 0.
func dot64(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
