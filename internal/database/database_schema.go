// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

/*
database_schema.go - Database Schema Management

Tables:
  - ideas: one row per idea. Title is unique; only elo_rating,
    bayesian_mean, uncertainty and updated_at change after insert.
  - feedback_log: append-only record of every applied feedback event
    (star rating, pairwise comparison, review) with the Elo before/after.
  - idea_versions: append-only snapshots used for evolution tracking and
    stagnation detection.
  - temporal_embeddings: append-only embedding snapshots with metadata.

Embeddings are stored as little-endian float32 BLOBs and tags as a JSON
array of strings.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ideas (
			id VARCHAR PRIMARY KEY,
			title VARCHAR NOT NULL UNIQUE,
			description VARCHAR NOT NULL,
			author VARCHAR NOT NULL,
			tags VARCHAR NOT NULL DEFAULT '[]',
			elo_rating DOUBLE NOT NULL,
			bayesian_mean DOUBLE NOT NULL,
			uncertainty DOUBLE NOT NULL,
			sentiment DOUBLE NOT NULL,
			trend_score DOUBLE NOT NULL,
			provenance_score DOUBLE NOT NULL,
			created_at TIMESTAMP NOT NULL,
			embedding BLOB,
			hash_signature VARCHAR NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS feedback_log (
			id VARCHAR PRIMARY KEY,
			idea_id VARCHAR NOT NULL,
			kind VARCHAR NOT NULL,
			other_idea_id VARCHAR,
			rating INTEGER,
			preference VARCHAR,
			relevance DOUBLE,
			novelty DOUBLE,
			feasibility DOUBLE,
			usefulness DOUBLE,
			elo_before DOUBLE NOT NULL,
			elo_after DOUBLE NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE SEQUENCE IF NOT EXISTS idea_versions_seq START 1`,
		`CREATE TABLE IF NOT EXISTS idea_versions (
			id BIGINT PRIMARY KEY DEFAULT nextval('idea_versions_seq'),
			idea_id VARCHAR NOT NULL,
			title VARCHAR NOT NULL,
			description VARCHAR NOT NULL,
			elo_rating DOUBLE NOT NULL,
			bayesian_mean DOUBLE NOT NULL,
			uncertainty DOUBLE NOT NULL,
			reason VARCHAR NOT NULL,
			recorded_at TIMESTAMP NOT NULL
		)`,

		`CREATE SEQUENCE IF NOT EXISTS temporal_embeddings_seq START 1`,
		`CREATE TABLE IF NOT EXISTS temporal_embeddings (
			id BIGINT PRIMARY KEY DEFAULT nextval('temporal_embeddings_seq'),
			idea_id VARCHAR NOT NULL,
			embedding BLOB NOT NULL,
			metadata VARCHAR NOT NULL DEFAULT '{}',
			recorded_at TIMESTAMP NOT NULL
		)`,
	}
}

// createIndexes creates secondary indexes.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_ideas_created ON ideas(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_idea ON feedback_log(idea_id)`,
		`CREATE INDEX IF NOT EXISTS idx_versions_idea ON idea_versions(idea_id)`,
		`CREATE INDEX IF NOT EXISTS idx_temporal_idea ON temporal_embeddings(idea_id)`,
		`CREATE INDEX IF NOT EXISTS idx_temporal_recorded ON temporal_embeddings(recorded_at)`,
	}
	for _, q := range indexes {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", q, err)
		}
	}
	return nil
}
