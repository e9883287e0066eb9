// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package embedding

import (
	"context"
	"encoding/binary"
	"math/rand/v2"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"

	"github.com/tomtom215/ideaforge/internal/features"
)

// HashEmbedder is the offline embedder. Every lowercased token contributes
// a Gaussian pseudo-random vector seeded from its blake2b digest; the sum
// is L2-normalized.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a hash embedder of the given width.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &HashEmbedder{dim: dim}
}

// Embed never fails.
func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, h.dim)
	tokens := tokenize(text)
	if len(tokens) == 0 {
		tokens = []string{text}
	}
	for _, tok := range tokens {
		seed := blake2b.Sum256([]byte(tok))
		rng := rand.New(rand.NewPCG(
			binary.LittleEndian.Uint64(seed[0:8]),
			binary.LittleEndian.Uint64(seed[8:16]),
		))
		for i := range v {
			v[i] += float32(rng.NormFloat64())
		}
	}
	return features.Normalize(v), nil
}

// Dimension returns the vector width.
func (h *HashEmbedder) Dimension() int { return h.dim }

// Name returns the provider name.
func (h *HashEmbedder) Name() string { return ProviderHash }

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
