// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Feedback kinds stored in feedback_log.kind.
const (
	FeedbackRating  = "rating"
	FeedbackCompare = "compare"
	FeedbackReview  = "review"
)

// FeedbackRecord is one applied feedback event. Optional columns are nil
// for kinds that do not use them.
type FeedbackRecord struct {
	ID          string    `json:"id"`
	IdeaID      string    `json:"idea_id"`
	Kind        string    `json:"kind"`
	OtherIdeaID *string   `json:"other_idea_id,omitempty"`
	Rating      *int      `json:"rating,omitempty"`
	Preference  *string   `json:"preference,omitempty"`
	Relevance   *float64  `json:"relevance,omitempty"`
	Novelty     *float64  `json:"novelty,omitempty"`
	Feasibility *float64  `json:"feasibility,omitempty"`
	Usefulness  *float64  `json:"usefulness,omitempty"`
	EloBefore   float64   `json:"elo_before"`
	EloAfter    float64   `json:"elo_after"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReviewAverage returns the mean of the four review dimensions, or false
// when the record is not a complete review.
func (r *FeedbackRecord) ReviewAverage() (float64, bool) {
	if r.Relevance == nil || r.Novelty == nil || r.Feasibility == nil || r.Usefulness == nil {
		return 0, false
	}
	return (*r.Relevance + *r.Novelty + *r.Feasibility + *r.Usefulness) / 4, true
}

// FeedbackStats aggregates the feedback log for one idea.
type FeedbackStats struct {
	IdeaID         string  `json:"idea_id"`
	Count          int     `json:"count"`
	Reviews        int     `json:"reviews"`
	AvgRelevance   float64 `json:"avg_relevance"`
	AvgNovelty     float64 `json:"avg_novelty"`
	AvgFeasibility float64 `json:"avg_feasibility"`
	AvgUsefulness  float64 `json:"avg_usefulness"`
}

// AppendFeedback adds a record to the feedback log.
func (db *DB) AppendFeedback(ctx context.Context, r *FeedbackRecord) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("insert", "feedback_log", start, err) }()

	_, err = db.conn.ExecContext(ctx, `INSERT INTO feedback_log
		(id, idea_id, kind, other_idea_id, rating, preference, relevance, novelty,
		 feasibility, usefulness, elo_before, elo_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.IdeaID, r.Kind, nullable(r.OtherIdeaID), nullable(r.Rating), nullable(r.Preference),
		nullable(r.Relevance), nullable(r.Novelty), nullable(r.Feasibility), nullable(r.Usefulness),
		r.EloBefore, r.EloAfter, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append feedback: %w", err)
	}
	return nil
}

const feedbackColumns = `id, idea_id, kind, other_idea_id, rating, preference, relevance,
	novelty, feasibility, usefulness, elo_before, elo_after, created_at`

func scanFeedback(row rowScanner) (*FeedbackRecord, error) {
	var (
		r                     FeedbackRecord
		other, pref           sql.NullString
		rating                sql.NullInt64
		rel, nov, feas, usefl sql.NullFloat64
	)
	if err := row.Scan(&r.ID, &r.IdeaID, &r.Kind, &other, &rating, &pref, &rel, &nov,
		&feas, &usefl, &r.EloBefore, &r.EloAfter, &r.CreatedAt); err != nil {
		return nil, err
	}
	if other.Valid {
		r.OtherIdeaID = &other.String
	}
	if pref.Valid {
		r.Preference = &pref.String
	}
	if rating.Valid {
		v := int(rating.Int64)
		r.Rating = &v
	}
	r.Relevance = nullFloat(rel)
	r.Novelty = nullFloat(nov)
	r.Feasibility = nullFloat(feas)
	r.Usefulness = nullFloat(usefl)
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}

// nullable unwraps an optional column value for binding.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// FeedbackForIdea returns the feedback log for one idea, oldest first.
func (db *DB) FeedbackForIdea(ctx context.Context, ideaID string) ([]*FeedbackRecord, error) {
	return db.queryFeedback(ctx, `SELECT `+feedbackColumns+` FROM feedback_log
		WHERE idea_id = ? ORDER BY created_at, id`, ideaID)
}

// AllFeedback returns the whole feedback log, oldest first.
func (db *DB) AllFeedback(ctx context.Context) ([]*FeedbackRecord, error) {
	return db.queryFeedback(ctx, `SELECT `+feedbackColumns+` FROM feedback_log ORDER BY created_at, id`)
}

func (db *DB) queryFeedback(ctx context.Context, query string, args ...any) (_ []*FeedbackRecord, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "feedback_log", start, err) }()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var out []*FeedbackRecord
	for rows.Next() {
		r, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FeedbackStats returns the event count and the per-dimension review
// averages for one idea. An idea with no feedback has Count 0.
func (db *DB) FeedbackStats(ctx context.Context, ideaID string) (*FeedbackStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	stats := &FeedbackStats{IdeaID: ideaID}
	var rel, nov, feas, usefl sql.NullFloat64
	err := db.conn.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE kind = 'review'),
			AVG(relevance) FILTER (WHERE kind = 'review'),
			AVG(novelty) FILTER (WHERE kind = 'review'),
			AVG(feasibility) FILTER (WHERE kind = 'review'),
			AVG(usefulness) FILTER (WHERE kind = 'review')
		FROM feedback_log WHERE idea_id = ?`, ideaID).
		Scan(&stats.Count, &stats.Reviews, &rel, &nov, &feas, &usefl)
	if err != nil {
		return nil, fmt.Errorf("failed to compute feedback stats: %w", err)
	}
	stats.AvgRelevance = rel.Float64
	stats.AvgNovelty = nov.Float64
	stats.AvgFeasibility = feas.Float64
	stats.AvgUsefulness = usefl.Float64
	return stats, nil
}

// ReviewOutcomes returns, per idea with at least one review, the mean of
// its review averages. It feeds the causal model.
func (db *DB) ReviewOutcomes(ctx context.Context) (map[string]float64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT idea_id,
			AVG((relevance + novelty + feasibility + usefulness) / 4.0)
		FROM feedback_log
		WHERE kind = 'review'
		GROUP BY idea_id
		ORDER BY idea_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query review outcomes: %w", err)
	}
	defer closeWithLog(rows, "rows")

	out := make(map[string]float64)
	for rows.Next() {
		var id string
		var avg float64
		if err := rows.Scan(&id, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan review outcome: %w", err)
		}
		out[id] = avg
	}
	return out, rows.Err()
}
