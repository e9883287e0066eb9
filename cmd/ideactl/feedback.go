// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tomtom215/ideaforge/internal/app"
	"github.com/tomtom215/ideaforge/internal/feedback"
)

func rateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate <idea-id> <stars>",
		Short: "Rate an idea from 1 to 5 stars",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stars, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("stars must be an integer: %w", err)
			}
			return withFeedback(cmd.Context(), func(a *app.App) error {
				res, err := a.Feedback.Rate(cmd.Context(), args[0], stars)
				if err != nil {
					return err
				}
				return printFeedback(res)
			})
		},
	}
}

func compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <idea-a> <idea-b> <A|B|equal>",
		Short: "Record a pairwise preference",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pref, err := feedback.ParsePreference(args[2])
			if err != nil {
				return err
			}
			return withFeedback(cmd.Context(), func(a *app.App) error {
				res, err := a.Feedback.Compare(cmd.Context(), args[0], args[1], pref)
				if err != nil {
					return err
				}
				return printFeedback(res)
			})
		},
	}
}

func reviewCmd() *cobra.Command {
	var r feedback.Review

	cmd := &cobra.Command{
		Use:   "review <idea-id>",
		Short: "Submit a structured review",
		Long: `Submit a structured review. Each score is in [0,1]; the relevance
score also nudges the ranking weights.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.Validate(); err != nil {
				return err
			}
			return withFeedback(cmd.Context(), func(a *app.App) error {
				res, err := a.Feedback.SubmitReview(cmd.Context(), args[0], r)
				if err != nil {
					return err
				}
				return printFeedback(res)
			})
		},
	}

	cmd.Flags().Float64Var(&r.Relevance, "relevance", 0.5, "relevance score")
	cmd.Flags().Float64Var(&r.Novelty, "novelty", 0.5, "novelty score")
	cmd.Flags().Float64Var(&r.Feasibility, "feasibility", 0.5, "feasibility score")
	cmd.Flags().Float64Var(&r.Usefulness, "usefulness", 0.5, "usefulness score")
	return cmd
}

func printFeedback(res *feedback.Result) error {
	if jsonOutput {
		return printJSON(res)
	}
	fmt.Printf("Recorded %s feedback %s\n", res.Kind, res.FeedbackID)
	for _, c := range res.Changes {
		fmt.Printf("  %-40s elo %+.1f\n", truncate(c.Title, 40), c.EloChange)
	}
	return nil
}
