// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/ideaforge/internal/app"
	"github.com/tomtom215/ideaforge/internal/idea"
	"github.com/tomtom215/ideaforge/internal/recommend"
)

var sampleIdeas = []recommend.NewIdea{
	{
		Title:       "AI-Powered Sustainable Energy Grid",
		Description: "Using artificial intelligence and machine learning to optimize renewable energy distribution with transparent governance, ethical data collection, and strong environmental benefits",
		Author:      "Dr. Green",
		Tags:        []string{"AI", "energy", "sustainability", "ethical"},
	},
	{
		Title:       "Blockchain Healthcare Records System",
		Description: "Decentralized patient records with privacy-preserving encryption, GDPR compliance, and transparent access controls for improved healthcare delivery",
		Author:      "Medical Innovator",
		Tags:        []string{"blockchain", "healthcare", "privacy", "compliance"},
	},
	{
		Title:       "Urban Vertical Farming with IoT",
		Description: "Sustainable indoor agriculture using IoT sensors for resource optimization, reducing carbon footprint and ensuring food security for communities",
		Author:      "AgriTech Founder",
		Tags:        []string{"agriculture", "IoT", "sustainability", "urban"},
	},
	{
		Title:       "Quantum-Encrypted Communication Platform",
		Description: "Ultra-secure messaging using quantum encryption for enterprise and government communications with certified compliance",
		Author:      "Security Expert",
		Tags:        []string{"quantum", "security", "communication", "enterprise"},
	},
	{
		Title:       "AI Mentor for New Managers",
		Description: "Context-aware coaching bot that summarizes one-on-one meetings and drafts constructive feedback for first-time managers",
		Tags:        []string{"HR", "coaching", "AI"},
	},
	{
		Title:       "Edge AI for Retail Queues",
		Description: "On-premise queue detection with staff rebalancing suggestions to shorten checkout waits in physical stores",
		Tags:        []string{"retail", "AI", "edge"},
	},
}

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample ideas or a JSON file of ideas",
		Long: `Load the built-in sample ideas, or with --file a JSON array of objects
with title, description, author, tags and the optional provenance,
market_size, revenue_potential and cost fields. Ideas already present
are reported as duplicates.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ideas := sampleIdeas
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				ideas = nil
				if err := json.Unmarshal(data, &ideas); err != nil {
					return fmt.Errorf("parse %s: %w", file, err)
				}
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				results := make([]*recommend.IngestResult, 0, len(ideas))
				counts := map[idea.InsertOutcome]int{}
				for _, in := range ideas {
					res, err := a.Engine.AddIdea(cmd.Context(), in)
					if err != nil {
						return fmt.Errorf("add %q: %w", in.Title, err)
					}
					results = append(results, res)
					counts[res.Outcome]++
					if !jsonOutput {
						printIngest(in.Title, res)
					}
				}
				if jsonOutput {
					return printJSON(results)
				}
				fmt.Printf("\n%d inserted, %d duplicate, %d rejected\n",
					counts[idea.Inserted], counts[idea.Duplicate], counts[idea.Rejected])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file of ideas")
	return cmd
}
