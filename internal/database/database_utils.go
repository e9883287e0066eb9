// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/ideaforge/internal/idea"
	"github.com/tomtom215/ideaforge/internal/logging"
	"github.com/tomtom215/ideaforge/internal/metrics"
)

// ensureContext adds a 30-second timeout when ctx carries no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}
	return ctx, func() {}
}

// observe records query timing and errors for the named operation.
func observe(operation, table string, start time.Time, err error) {
	if errors.Is(err, idea.ErrNotFound) || errors.Is(err, idea.ErrDuplicate) {
		err = nil
	}
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
	if isConnectionError(err) {
		logging.Error().Err(err).Str("op", operation).Msg("Database connection lost")
	}
}

// Checkpoint forces a WAL checkpoint.
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.cfg.Path
}

// RecordCounts holds row counts for the main tables.
type RecordCounts struct {
	Ideas              int64 `json:"ideas"`
	Feedback           int64 `json:"feedback"`
	Versions           int64 `json:"versions"`
	TemporalEmbeddings int64 `json:"temporal_embeddings"`
}

// GetRecordCounts returns row counts for the main tables.
func (db *DB) GetRecordCounts(ctx context.Context) (RecordCounts, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var rc RecordCounts
	targets := []struct {
		table string
		dst   *int64
	}{
		{"ideas", &rc.Ideas},
		{"feedback_log", &rc.Feedback},
		{"idea_versions", &rc.Versions},
		{"temporal_embeddings", &rc.TemporalEmbeddings},
	}
	for _, t := range targets {
		if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dst); err != nil {
			return rc, fmt.Errorf("failed to count %s: %w", t.table, err)
		}
	}
	return rc, nil
}
