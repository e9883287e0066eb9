// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/ideaforge/internal/idea"
)

// IdeaVersion is a snapshot of an idea at a point in its evolution.
type IdeaVersion struct {
	IdeaID       string    `json:"idea_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	EloRating    float64   `json:"elo_rating"`
	BayesianMean float64   `json:"bayesian_mean"`
	Uncertainty  float64   `json:"uncertainty"`
	Reason       string    `json:"reason"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// SnapshotOf builds a version record from the idea's current state.
func SnapshotOf(i *idea.Idea, reason string, at time.Time) IdeaVersion {
	return IdeaVersion{
		IdeaID:       i.ID,
		Title:        i.Title,
		Description:  i.Description,
		EloRating:    i.EloRating,
		BayesianMean: i.BayesianMean,
		Uncertainty:  i.Uncertainty,
		Reason:       reason,
		RecordedAt:   at,
	}
}

// SaveVersion appends a version snapshot.
func (db *DB) SaveVersion(ctx context.Context, v IdeaVersion) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("insert", "idea_versions", start, err) }()

	_, err = db.conn.ExecContext(ctx, `INSERT INTO idea_versions
		(idea_id, title, description, elo_rating, bayesian_mean, uncertainty, reason, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.IdeaID, v.Title, v.Description, v.EloRating, v.BayesianMean, v.Uncertainty, v.Reason, v.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to save version: %w", err)
	}
	return nil
}

// Versions returns the evolution trajectory of an idea, oldest first.
func (db *DB) Versions(ctx context.Context, ideaID string) ([]IdeaVersion, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT idea_id, title, description, elo_rating,
			bayesian_mean, uncertainty, reason, recorded_at
		FROM idea_versions WHERE idea_id = ? ORDER BY recorded_at, id`, ideaID)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var out []IdeaVersion
	for rows.Next() {
		var v IdeaVersion
		if err := rows.Scan(&v.IdeaID, &v.Title, &v.Description, &v.EloRating,
			&v.BayesianMean, &v.Uncertainty, &v.Reason, &v.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		v.RecordedAt = v.RecordedAt.UTC()
		out = append(out, v)
	}
	return out, rows.Err()
}

// LastVersionTimes returns the most recent snapshot time per idea.
func (db *DB) LastVersionTimes(ctx context.Context) (map[string]time.Time, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT idea_id, MAX(recorded_at) FROM idea_versions GROUP BY idea_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query version times: %w", err)
	}
	defer closeWithLog(rows, "rows")

	out := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("failed to scan version time: %w", err)
		}
		out[id] = at.UTC()
	}
	return out, rows.Err()
}

// StagnantIdea is an idea whose last snapshot is older than the threshold.
type StagnantIdea struct {
	IdeaID       string    `json:"idea_id"`
	Title        string    `json:"title"`
	LastUpdate   time.Time `json:"last_update"`
	DaysStagnant int       `json:"days_stagnant"`
}

// DetectStagnation lists ideas with no snapshot in thresholdDays. Ideas
// that were never snapshotted count as updated now.
func DetectStagnation(ideas []*idea.Idea, last map[string]time.Time, thresholdDays int, now time.Time) []StagnantIdea {
	cutoff := now.Add(-time.Duration(thresholdDays) * 24 * time.Hour)
	var out []StagnantIdea
	for _, i := range ideas {
		at, ok := last[i.ID]
		if !ok {
			at = now
		}
		if at.Before(cutoff) {
			out = append(out, StagnantIdea{
				IdeaID:       i.ID,
				Title:        i.Title,
				LastUpdate:   at,
				DaysStagnant: int(now.Sub(at).Hours() / 24),
			})
		}
	}
	return out
}

// EvolutionRate returns snapshots per day over the span of the trajectory.
// Fewer than two snapshots yield 0.
func EvolutionRate(versions []IdeaVersion) float64 {
	if len(versions) < 2 {
		return 0
	}
	days := int(versions[len(versions)-1].RecordedAt.Sub(versions[0].RecordedAt).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return float64(len(versions)) / float64(days)
}
