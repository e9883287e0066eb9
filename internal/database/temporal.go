// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package database

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ideaforge/internal/idea"
)

// Temporal memory bounds.
const (
	maxTemporalIDLen = 100
	defaultHoursBack = 168
	maxHoursBack     = 8760
	temporalLimitOne = 100
	temporalLimitAll = 1000
)

// ErrInvalidEmbedding is returned for empty or non-finite embedding snapshots.
var ErrInvalidEmbedding = errors.New("invalid embedding")

// TemporalEmbedding is a stored embedding snapshot.
type TemporalEmbedding struct {
	IdeaID     string         `json:"idea_id"`
	Embedding  []float32      `json:"-"`
	Metadata   map[string]any `json:"metadata"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// StoreEmbedding appends an embedding snapshot for an idea. The idea id is
// truncated to 100 characters and metadata that cannot be encoded is
// replaced by an empty object.
func (db *DB) StoreEmbedding(ctx context.Context, ideaID string, v []float32, metadata map[string]any) (err error) {
	if len(v) == 0 {
		return ErrInvalidEmbedding
	}
	for _, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return ErrInvalidEmbedding
		}
	}
	if len(ideaID) > maxTemporalIDLen {
		ideaID = ideaID[:maxTemporalIDLen]
	}

	meta := "{}"
	if len(metadata) > 0 {
		if b, merr := json.Marshal(metadata); merr == nil {
			meta = string(b)
		}
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("insert", "temporal_embeddings", start, err) }()

	_, err = db.conn.ExecContext(ctx, `INSERT INTO temporal_embeddings (idea_id, embedding, metadata, recorded_at)
		VALUES (?, ?, ?, ?)`, ideaID, encodeVector(v), meta, idea.Now())
	if err != nil {
		return fmt.Errorf("failed to store embedding snapshot: %w", err)
	}
	return nil
}

// TemporalEmbeddings returns snapshots recorded within hoursBack (clamped
// to [1, 8760], 0 means 168), newest first. An empty ideaID returns
// snapshots for all ideas.
func (db *DB) TemporalEmbeddings(ctx context.Context, ideaID string, hoursBack int) ([]TemporalEmbedding, error) {
	switch {
	case hoursBack == 0:
		hoursBack = defaultHoursBack
	case hoursBack < 1:
		hoursBack = 1
	case hoursBack > maxHoursBack:
		hoursBack = maxHoursBack
	}
	cutoff := idea.Now().Add(-time.Duration(hoursBack) * time.Hour)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT idea_id, embedding, metadata, recorded_at FROM temporal_embeddings
		WHERE recorded_at >= ? ORDER BY recorded_at DESC, id DESC LIMIT ?`
	args := []any{cutoff, temporalLimitAll}
	if ideaID != "" {
		query = `SELECT idea_id, embedding, metadata, recorded_at FROM temporal_embeddings
			WHERE idea_id = ? AND recorded_at >= ? ORDER BY recorded_at DESC, id DESC LIMIT ?`
		args = []any{ideaID, cutoff, temporalLimitOne}
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query temporal embeddings: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var out []TemporalEmbedding
	for rows.Next() {
		var (
			te   TemporalEmbedding
			blob []byte
			meta string
		)
		if err := rows.Scan(&te.IdeaID, &blob, &meta, &te.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan temporal embedding: %w", err)
		}
		v, err := decodeVector(blob)
		if err != nil {
			continue
		}
		te.Embedding = v
		if err := json.Unmarshal([]byte(meta), &te.Metadata); err != nil {
			te.Metadata = map[string]any{}
		}
		te.RecordedAt = te.RecordedAt.UTC()
		out = append(out, te)
	}
	return out, rows.Err()
}
