// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package generation

import (
	"strings"
	"unicode/utf8"

	"github.com/tomtom215/ideaforge/internal/idea"
)

// Quality gate thresholds for persisting generated drafts.
const (
	MinTitleLen       = 10
	MinDescriptionLen = 50
	MinTags           = 2
	descPrefixLen     = 50
)

// Acceptable reports whether a draft is substantial enough to persist.
func Acceptable(d Draft) bool {
	if utf8.RuneCountInString(strings.TrimSpace(d.Title)) < MinTitleLen {
		return false
	}
	if utf8.RuneCountInString(strings.TrimSpace(d.Description)) < MinDescriptionLen {
		return false
	}
	n := 0
	for _, t := range d.Tags {
		if strings.TrimSpace(t) != "" {
			n++
		}
	}
	return n >= MinTags
}

// Persistable filters drafts down to those that pass Acceptable and do not
// repeat an existing idea (or an earlier draft) by case-insensitive title or
// by the first 50 characters of the description.
func Persistable(drafts []Draft, existing []*idea.Idea) []Draft {
	titles := make(map[string]struct{}, len(existing)+len(drafts))
	prefixes := make(map[string]struct{}, len(existing)+len(drafts))
	for _, i := range existing {
		titles[titleKey(i.Title)] = struct{}{}
		prefixes[descKey(i.Description)] = struct{}{}
	}

	var out []Draft
	for _, d := range drafts {
		if !Acceptable(d) {
			continue
		}
		tk, dk := titleKey(d.Title), descKey(d.Description)
		if _, dup := titles[tk]; dup {
			continue
		}
		if _, dup := prefixes[dk]; dup {
			continue
		}
		titles[tk] = struct{}{}
		prefixes[dk] = struct{}{}
		out = append(out, d)
	}
	return out
}

func titleKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func descKey(s string) string {
	return truncateRunes(strings.ToLower(strings.TrimSpace(s)), descPrefixLen)
}
