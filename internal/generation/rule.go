// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package generation

import (
	"context"
	"strings"
	"unicode"
)

type ruleTemplate struct {
	title       string // %s receives the title-cased theme
	description string // %s receives the theme as given
	tags        []string
}

var ruleTemplates = []ruleTemplate{
	{
		title:       "%s Platform with AI Integration",
		description: "An innovative platform that leverages artificial intelligence to enhance %s. The solution uses machine learning algorithms to optimize user experience, provide personalized recommendations, and automate complex workflows. Features include real-time analytics, predictive modeling, and seamless integration with existing tools.",
		tags:        []string{"AI", "platform", "innovation", "automation"},
	},
	{
		title:       "Sustainable %s Ecosystem",
		description: "A comprehensive ecosystem focused on sustainable %s practices. This solution addresses environmental concerns while maintaining efficiency and profitability. Incorporates renewable resources, circular economy principles, and transparent supply chains with blockchain verification.",
		tags:        []string{"sustainability", "ecosystem", "green-tech", "blockchain"},
	},
	{
		title:       "Decentralized %s Network",
		description: "A decentralized network that democratizes access to %s services. Built on blockchain technology, this platform ensures transparency, security, and fair distribution of resources. Smart contracts automate transactions while maintaining user privacy and data ownership.",
		tags:        []string{"decentralized", "blockchain", "web3", "privacy"},
	},
}

// RuleGenerator fills fixed templates with the theme. It is deterministic
// and never fails.
type RuleGenerator struct{}

// NewRuleGenerator creates a rule-based generator.
func NewRuleGenerator() *RuleGenerator { return &RuleGenerator{} }

// Generate returns up to min(n, 3) template drafts.
func (g *RuleGenerator) Generate(_ context.Context, theme string, n int) Result {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = "innovation"
	}
	n = clampCount(n)
	if n > len(ruleTemplates) {
		n = len(ruleTemplates)
	}

	drafts := make([]Draft, 0, n)
	for _, t := range ruleTemplates[:n] {
		tags := append([]string{theme}, t.tags...)
		drafts = append(drafts, Draft{
			Title:       strings.Replace(t.title, "%s", titleCase(theme), 1),
			Description: strings.Replace(t.description, "%s", theme, 1),
			Tags:        tags,
		})
	}
	return Result{Provider: ProviderRule, Ideas: drafts}
}

// Name returns the provider name.
func (g *RuleGenerator) Name() string { return ProviderRule }

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
