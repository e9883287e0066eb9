// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package generation

import "fmt"

const promptTemplate = `Generate %d unique and innovative startup/project ideas based on this theme: %q

For each idea, provide:
1. A clear title (5-10 words)
2. A detailed description (50-100 words) covering the problem, solution, and impact
3. 3-5 relevant tags

Format your response as:
IDEA 1:
Title: [title here]
Description: [description here]
Tags: [tag1, tag2, tag3, tag4, tag5]

IDEA 2:
...
`

// BuildPrompt renders the generation prompt for theme.
func BuildPrompt(theme string, n int) string {
	return fmt.Sprintf(promptTemplate, clampCount(n), theme)
}
