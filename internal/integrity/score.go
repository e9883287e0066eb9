// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package integrity scores stored ideas for tamper evidence and keeps the
// append-only provenance hash chain.
package integrity

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/ideaforge/internal/idea"
	"github.com/tomtom215/ideaforge/internal/metrics"
)

// ModelVersion is stamped into every audit manifest.
const ModelVersion = "1.0.0"

// Validation statuses.
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// Score combines hash consistency, provenance and an age-based
// reproducibility term that decays to zero over a year:
//
//	0.5*hash_valid + 0.3*provenance + 0.2*max(0, 1-age_days/365)
func Score(i *idea.Idea, now time.Time) float64 {
	if i == nil {
		return 0
	}
	hashValid := 0.0
	if i.VerifySignature() {
		hashValid = 1
	}
	prov := i.ProvenanceScore
	if math.IsNaN(prov) || math.IsInf(prov, 0) {
		prov = 0
	}
	repro := math.Max(0, 1-float64(i.AgeDays(now))/365)
	return clamp01(0.5*hashValid + 0.3*prov + 0.2*repro)
}

// Report is the result of validating every stored idea's signature.
type Report struct {
	Status       string    `json:"status"`
	Total        int       `json:"total_records"`
	Valid        int       `json:"valid_records"`
	Invalid      int       `json:"invalid_records"`
	ValidityRate float64   `json:"validity_rate"`
	TamperedIDs  []string  `json:"tampered_ids"`
	Timestamp    time.Time `json:"timestamp"`
}

// ValidateAll recomputes the signature of every idea. An empty set passes
// with a validity rate of 1.
func ValidateAll(ideas []*idea.Idea, now time.Time) Report {
	r := Report{Total: len(ideas), TamperedIDs: []string{}, Timestamp: now}
	for _, i := range ideas {
		if i.VerifySignature() {
			r.Valid++
			continue
		}
		r.Invalid++
		r.TamperedIDs = append(r.TamperedIDs, i.ID)
		metrics.IntegrityMismatches.Inc()
	}
	r.ValidityRate = 1
	if r.Total > 0 {
		r.ValidityRate = float64(r.Valid) / float64(r.Total)
	}
	r.Status = StatusFail
	if r.ValidityRate == 1 {
		r.Status = StatusPass
	}
	return r
}

// AverageScore returns the mean integrity score and the per-idea scores.
func AverageScore(ideas []*idea.Idea, now time.Time) (float64, map[string]float64) {
	scores := make(map[string]float64, len(ideas))
	if len(ideas) == 0 {
		return 0, scores
	}
	var sum float64
	for _, i := range ideas {
		s := Score(i, now)
		scores[i.ID] = s
		sum += s
	}
	return sum / float64(len(ideas)), scores
}

// Manifest records the weights and parameters of a ranking run so it can be
// reproduced later.
type Manifest struct {
	RunID        string             `json:"run_id"`
	Timestamp    string             `json:"timestamp"`
	ModelVersion string             `json:"model_version"`
	Weights      map[string]float64 `json:"weights"`
	Parameters   map[string]any     `json:"parameters"`
	ManifestHash string             `json:"manifest_hash"`
}

// NewManifest builds a manifest and hashes every field except the hash
// itself. An empty runID gets a fresh UUID.
func NewManifest(runID string, weights map[string]float64, params map[string]any, now time.Time) (Manifest, error) {
	if runID == "" {
		runID = uuid.NewString()
	}
	if weights == nil {
		weights = map[string]float64{}
	}
	if params == nil {
		params = map[string]any{}
	}
	m := Manifest{
		RunID:        runID,
		Timestamp:    now.UTC().Format(time.RFC3339Nano),
		ModelVersion: ModelVersion,
		Weights:      weights,
		Parameters:   params,
	}
	h, err := m.computeHash()
	if err != nil {
		return Manifest{}, err
	}
	m.ManifestHash = h
	return m, nil
}

// Verify reports whether ManifestHash still matches the contents.
func (m *Manifest) Verify() bool {
	h, err := m.computeHash()
	return err == nil && h == m.ManifestHash
}

func (m *Manifest) computeHash() (string, error) {
	return HashJSON(map[string]any{
		"run_id":        m.RunID,
		"timestamp":     m.Timestamp,
		"model_version": m.ModelVersion,
		"weights":       m.Weights,
		"parameters":    m.Parameters,
	})
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
