// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/ideaforge/internal/app"
	"github.com/tomtom215/ideaforge/internal/recommend"
)

func addCmd() *cobra.Command {
	var in recommend.NewIdea
	var provenance float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an idea",
		Long: `Add an idea through the ingestion pipeline: adversarial and ethics
screening, embedding, signing and a provenance block.

Example:
  ideactl add --title "Urban Vertical Farming" \
    --description "Indoor agriculture with IoT sensors for local food security" \
    --tags agriculture,iot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("provenance") {
				in.Provenance = &provenance
			}
			return withApp(cmd.Context(), func(a *app.App) error {
				res, err := a.Engine.AddIdea(cmd.Context(), in)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(res)
				}
				printIngest(in.Title, res)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&in.Title, "title", "t", "", "idea title")
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "idea description")
	cmd.Flags().StringVarP(&in.Author, "author", "a", "", "author")
	cmd.Flags().StringSliceVar(&in.Tags, "tags", nil, "comma separated tags")
	cmd.Flags().Float64Var(&provenance, "provenance", 0, "provenance score in [0,1]")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func printIngest(title string, res *recommend.IngestResult) {
	switch {
	case res.Reason != "":
		fmt.Printf("%-9s %s (%s)\n", res.Outcome, title, res.Reason)
	case res.ID != "":
		fmt.Printf("%-9s %s [%s]\n", res.Outcome, title, res.ID)
	default:
		fmt.Printf("%-9s %s\n", res.Outcome, title)
	}
}

func recommendCmd() *cobra.Command {
	var (
		req  recommend.Request
		view string
	)

	cmd := &cobra.Command{
		Use:   "recommend [query]",
		Short: "Rank ideas for a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Query = args[0]
			req.View = recommend.ParseView(view)
			return withApp(cmd.Context(), func(a *app.App) error {
				resp, err := a.Engine.Recommend(cmd.Context(), req)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(resp)
				}
				printRecommendations(resp)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&req.K, "top", "k", 0, "number of results (default from config)")
	cmd.Flags().StringSliceVar(&req.Tags, "tags", nil, "domain tags")
	cmd.Flags().BoolVar(&req.Diversify, "diversify", false, "apply MMR reranking")
	cmd.Flags().BoolVar(&req.Generate, "generate", false, "merge generated ideas")
	cmd.Flags().StringVar(&view, "view", "consensus", "ranking view (consensus, user, market, swot)")
	cmd.Flags().StringVar(&req.Preset, "preset", "", "MMR preset (relevance, balanced, diversity)")
	return cmd
}

func printRecommendations(resp *recommend.Response) {
	if len(resp.Results) == 0 {
		fmt.Println("No ideas matched.")
		return
	}
	for _, r := range resp.Results {
		fmt.Printf("#%d  %-40s score %.3f  %s\n", r.Rank, truncate(r.Title, 40), r.Score, r.ID)
		if r.Summary != "" {
			fmt.Printf("    %s\n", truncate(r.Summary, 100))
		}
		if len(r.Tags) > 0 {
			fmt.Printf("    tags: %s\n", strings.Join(r.Tags, ", "))
		}
	}
	fmt.Printf("\n%d candidates, view %s, %dms\n", resp.Metadata.Candidates, resp.Metadata.View, resp.Metadata.LatencyMS)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
