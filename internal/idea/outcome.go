// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package idea

// InsertOutcome is the result of an insert attempt. Duplicates and
// rejections are outcomes, not errors.
type InsertOutcome int

const (
	Inserted InsertOutcome = iota
	Duplicate
	Rejected
)

func (o InsertOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Duplicate:
		return "duplicate"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name.
func (o InsertOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
