// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/ideaforge/internal/idea"
)

const ideaColumns = `id, title, description, author, tags, elo_rating, bayesian_mean,
	uncertainty, sentiment, trend_score, provenance_score, created_at, embedding, hash_signature`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdea(row rowScanner) (*idea.Idea, error) {
	var (
		i       idea.Idea
		tagsRaw string
		embRaw  []byte
	)
	if err := row.Scan(&i.ID, &i.Title, &i.Description, &i.Author, &tagsRaw,
		&i.EloRating, &i.BayesianMean, &i.Uncertainty, &i.Sentiment, &i.TrendScore,
		&i.ProvenanceScore, &i.Timestamp, &embRaw, &i.HashSignature); err != nil {
		return nil, err
	}

	tags, err := decodeTags(tagsRaw)
	if err != nil {
		return nil, fmt.Errorf("idea %s: %w", i.ID, err)
	}
	i.Tags = tags

	emb, err := decodeVector(embRaw)
	if err != nil {
		return nil, fmt.Errorf("idea %s: %w", i.ID, err)
	}
	i.Embedding = emb
	i.Timestamp = i.Timestamp.UTC()
	return &i, nil
}

// InsertIdea stores a new idea. It returns idea.ErrDuplicate when an idea
// with the same title exists; the existing row is never overwritten.
func (db *DB) InsertIdea(ctx context.Context, i *idea.Idea) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("insert", "ideas", start, err) }()

	var existing string
	switch err = db.conn.QueryRowContext(ctx, `SELECT id FROM ideas WHERE title = ?`, i.Title).Scan(&existing); {
	case err == nil:
		return fmt.Errorf("%w: %q (id %s)", idea.ErrDuplicate, i.Title, existing)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to check duplicate title: %w", err)
	}

	tags, err := encodeTags(i.Tags)
	if err != nil {
		return err
	}

	_, err = db.conn.ExecContext(ctx, `INSERT INTO ideas (`+ideaColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.Title, i.Description, i.Author, tags,
		i.EloRating, i.BayesianMean, i.Uncertainty, i.Sentiment, i.TrendScore,
		i.ProvenanceScore, i.Timestamp, encodeVector(i.Embedding), i.HashSignature, i.Timestamp)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %q", idea.ErrDuplicate, i.Title)
		}
		return fmt.Errorf("failed to insert idea: %w", err)
	}

	db.bumpVersion()
	return nil
}

// GetIdea returns the idea with id or idea.ErrNotFound.
func (db *DB) GetIdea(ctx context.Context, id string) (_ *idea.Idea, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("get", "ideas", start, err) }()

	row := db.conn.QueryRowContext(ctx, `SELECT `+ideaColumns+` FROM ideas WHERE id = ?`, id)
	i, err := scanIdea(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", idea.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idea: %w", err)
	}
	return i, nil
}

// ListIdeas returns every idea ordered by creation time then id.
func (db *DB) ListIdeas(ctx context.Context) (_ []*idea.Idea, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("list", "ideas", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT `+ideaColumns+` FROM ideas ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var out []*idea.Idea
	for rows.Next() {
		i, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan idea: %w", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ideas: %w", err)
	}
	return out, nil
}

// CountIdeas returns the number of stored ideas.
func (db *DB) CountIdeas(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM ideas`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count ideas: %w", err)
	}
	return n, nil
}

// UpdateMutable writes the rating state of an idea. Content fields are
// never touched.
func (db *DB) UpdateMutable(ctx context.Context, id string, m idea.MutableFields) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("update", "ideas", start, err) }()

	var affected int64
	err = db.withRetry(ctx, "update_mutable", func() error {
		res, err := db.conn.ExecContext(ctx, `UPDATE ideas
			SET elo_rating = ?, bayesian_mean = ?, uncertainty = ?, updated_at = ?
			WHERE id = ?`,
			m.EloRating, m.BayesianMean, m.Uncertainty, idea.Now(), id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update idea: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", idea.ErrNotFound, id)
	}
	return nil
}

// UpdateMutablePair writes the rating state of two ideas in one
// transaction. Either both rows change or neither does.
func (db *DB) UpdateMutablePair(ctx context.Context, idA string, a idea.MutableFields, idB string, b idea.MutableFields) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("update", "ideas", start, err) }()

	err = db.withRetry(ctx, "update_mutable_pair", func() (err error) {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() {
			if err != nil {
				_ = tx.Rollback()
			}
		}()

		now := idea.Now()
		for _, row := range []struct {
			id string
			m  idea.MutableFields
		}{{idA, a}, {idB, b}} {
			res, err := tx.ExecContext(ctx, `UPDATE ideas
				SET elo_rating = ?, bayesian_mean = ?, uncertainty = ?, updated_at = ?
				WHERE id = ?`,
				row.m.EloRating, row.m.BayesianMean, row.m.Uncertainty, now, row.id)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: %s", idea.ErrNotFound, row.id)
			}
		}
		return tx.Commit()
	})
	if err != nil {
		if errors.Is(err, idea.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update idea pair: %w", err)
	}
	return nil
}
