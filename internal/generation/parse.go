// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package generation

import (
	"strings"
	"unicode/utf8"
)

// Parsed field limits.
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 1000
	MaxTags           = 5
)

type field int

const (
	fieldNone field = iota
	fieldTitle
	fieldDescription
	fieldTags
)

// Parse extracts drafts from model output in the line-oriented
// "Title: / Description: / Tags:" format. Markers are case-insensitive.
// A Title: line or an "IDEA n:" separator closes the previous record, and
// records missing a title or a description are dropped. Lines that carry no
// marker extend the description they follow. Missing tags default to
// [theme, innovative, startup].
func Parse(raw, theme string) []Draft {
	var (
		out     []Draft
		cur     *Draft
		last    = fieldNone
		hasTags bool
	)

	flush := func() {
		if cur == nil {
			return
		}
		d := finalize(*cur, hasTags, theme)
		if d.Title != "" && d.Description != "" {
			out = append(out, d)
		}
		cur = nil
		hasTags = false
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if v, ok := cutMarker(line, "title:"); ok {
			flush()
			if len(out) == MaxIdeas {
				break
			}
			cur = &Draft{Title: v}
			last = fieldTitle
			continue
		}
		if isIdeaHeader(line) {
			flush()
			last = fieldNone
			continue
		}
		if cur == nil {
			continue
		}
		if v, ok := cutMarker(line, "description:"); ok {
			cur.Description = v
			last = fieldDescription
			continue
		}
		if v, ok := cutMarker(line, "tags:"); ok {
			cur.Tags = splitTags(v)
			hasTags = true
			last = fieldTags
			continue
		}
		if last == fieldDescription {
			cur.Description += " " + line
		}
	}
	flush()

	if len(out) > MaxIdeas {
		out = out[:MaxIdeas]
	}
	return out
}

// isIdeaHeader matches separators such as "IDEA 2:" or "Idea #3".
func isIdeaHeader(line string) bool {
	if len(line) < 4 || !strings.EqualFold(line[:4], "idea") {
		return false
	}
	rest := strings.Trim(line[4:], " #:.-")
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func cutMarker(line, marker string) (string, bool) {
	if len(line) < len(marker) || !strings.EqualFold(line[:len(marker)], marker) {
		return "", false
	}
	return strings.TrimSpace(line[len(marker):]), true
}

func splitTags(s string) []string {
	s = strings.Trim(s, "[]")
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func finalize(d Draft, hasTags bool, theme string) Draft {
	d.Title = truncateRunes(strings.TrimSpace(d.Title), MaxTitleLen)
	d.Description = truncateRunes(strings.TrimSpace(d.Description), MaxDescriptionLen)
	if !hasTags || len(d.Tags) == 0 {
		d.Tags = []string{theme, "innovative", "startup"}
	}
	if len(d.Tags) > MaxTags {
		d.Tags = d.Tags[:MaxTags]
	}
	return d
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
