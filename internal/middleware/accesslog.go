// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/ideaforge/internal/logging"
)

// AccessLog logs every request at debug level and requests slower than
// slowThreshold at warn level.
func AccessLog(slowThreshold time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapper, r)

			elapsed := time.Since(start)
			l := logging.Ctx(r.Context())
			event := l.Debug()
			if slowThreshold > 0 && elapsed >= slowThreshold {
				event = l.Warn().Bool("slow", true)
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.statusCode).
				Dur("duration", elapsed).
				Msg("http request")
		})
	}
}
