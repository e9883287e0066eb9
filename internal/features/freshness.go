// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package features

import (
	"math"
	"time"
)

// DefaultFreshnessLambda is the default decay rate per day.
const DefaultFreshnessLambda = 0.01

// Freshness returns exp(-lambda * whole days since ts), clamped to [0, 1].
// Future timestamps count as age zero.
func Freshness(ts, now time.Time, lambda float64) float64 {
	if !finite(lambda) || lambda < 0 {
		lambda = DefaultFreshnessLambda
	}
	days := math.Floor(now.Sub(ts).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return Clamp(math.Exp(-lambda*days), 0, 1)
}
