// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package idea defines the Idea entity, the ranking feature set, and the
// identity and integrity hashes attached to every stored idea.
package idea

import (
	"errors"
	"strings"
	"time"
)

// Defaults applied to newly ingested ideas.
const (
	DefaultElo          = 1500.0
	DefaultBayesianMean = 0.5
	DefaultUncertainty  = 0.3
	DefaultProvenance   = 0.7
	DefaultAuthor       = "AI-Generated"
)

// Sentinel errors shared by stores and the engine.
var (
	ErrNotFound  = errors.New("idea not found")
	ErrDuplicate = errors.New("idea with this title already exists")
)

// Idea is a stored idea with its content and mutable rating state.
// Only EloRating, BayesianMean and Uncertainty change after creation.
type Idea struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`

	EloRating       float64 `json:"elo_rating"`
	BayesianMean    float64 `json:"bayesian_mean"`
	Uncertainty     float64 `json:"uncertainty"`
	Sentiment       float64 `json:"sentiment"`
	TrendScore      float64 `json:"trend_score"`
	ProvenanceScore float64 `json:"provenance_score"`

	Timestamp     time.Time `json:"timestamp"`
	Embedding     []float32 `json:"-"`
	HashSignature string    `json:"hash_signature"`
}

// Text returns title and description joined for keyword analysis.
func (i *Idea) Text() string {
	return i.Title + " " + i.Description
}

// HasTag reports whether the idea carries tag (case-insensitive).
func (i *Idea) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// AgeDays returns whole days elapsed since creation, never negative.
func (i *Idea) AgeDays(now time.Time) int {
	d := int(now.Sub(i.Timestamp).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// Summary returns the description truncated to 200 bytes on a rune boundary.
func (i *Idea) Summary() string {
	const limit = 200
	if len(i.Description) <= limit {
		return i.Description
	}
	cut := limit
	for cut > 0 && !isRuneStart(i.Description[cut]) {
		cut--
	}
	return i.Description[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// MutableFields are the rating fields a feedback event may rewrite.
type MutableFields struct {
	EloRating    float64 `json:"elo_rating"`
	BayesianMean float64 `json:"bayesian_mean"`
	Uncertainty  float64 `json:"uncertainty"`
}

// Mutable returns the current rating state.
func (i *Idea) Mutable() MutableFields {
	return MutableFields{EloRating: i.EloRating, BayesianMean: i.BayesianMean, Uncertainty: i.Uncertainty}
}

// Apply overwrites the rating state.
func (i *Idea) Apply(m MutableFields) {
	i.EloRating = m.EloRating
	i.BayesianMean = m.BayesianMean
	i.Uncertainty = m.Uncertainty
}

// Clone returns a deep copy.
func (i *Idea) Clone() *Idea {
	c := *i
	c.Tags = append([]string(nil), i.Tags...)
	c.Embedding = append([]float32(nil), i.Embedding...)
	return &c
}
