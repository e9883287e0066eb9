// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package idea

import (
	"crypto/md5" //nolint:gosec // identifier derivation, not security
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"time"
)

// TimestampLayout is the canonical timestamp encoding used in hashes.
const TimestampLayout = time.RFC3339Nano

// NewID derives the stable 16-hex-char identifier from title and creation time.
func NewID(title string, ts time.Time) string {
	sum := md5.Sum([]byte(title + ts.UTC().Format(TimestampLayout))) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])[:16]
}

// Signature computes the content integrity hash.
func Signature(id, title, description string, ts time.Time) string {
	payload := strings.Join([]string{id, title, description, ts.UTC().Format(TimestampLayout)}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Sign sets HashSignature from the idea's current content.
func (i *Idea) Sign() {
	i.HashSignature = Signature(i.ID, i.Title, i.Description, i.Timestamp)
}

// VerifySignature recomputes the hash and compares it with the stored one.
func (i *Idea) VerifySignature() bool {
	want := Signature(i.ID, i.Title, i.Description, i.Timestamp)
	return subtle.ConstantTimeCompare([]byte(want), []byte(i.HashSignature)) == 1
}

// Now returns the current UTC time at microsecond precision, the resolution
// the idea store keeps, so signatures survive a storage round trip.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
