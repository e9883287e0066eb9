// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package main

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/tomtom215/ideaforge/internal/app"
	"github.com/tomtom215/ideaforge/internal/evaluation"
)

func evaluateCmd() *cobra.Command {
	var (
		ranked []string
		truth  []string
		kVals  []int
		format string
		folds  int
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a ranking or cross-validate the stored corpus",
		Long: `With --ranked and --truth, score the given ranking against the ground
truth. With --folds, cross-validate the stored corpus under the current
weights.

Examples:
  ideactl evaluate --ranked a1,b2,c3 --truth b2,c3
  ideactl evaluate --folds 5 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if folds > 0 {
				return withApp(cmd.Context(), func(a *app.App) error {
					ideas, err := a.DB.ListIdeas(cmd.Context())
					if err != nil {
						return err
					}
					cv, err := evaluation.CrossValidate(cmd.Context(), ideas, a.Engine.RankCurrent, folds, seed)
					if err != nil {
						return err
					}
					if jsonOutput {
						return printJSON(cv)
					}
					printCrossValidation(cv)
					return nil
				})
			}

			if len(ranked) == 0 || len(truth) == 0 {
				return errors.New("either --folds or both --ranked and --truth are required")
			}
			m, err := evaluation.Evaluate(ranked, truth, kVals)
			if err != nil {
				return err
			}
			if jsonOutput {
				format = evaluation.FormatJSON
			}
			out, err := evaluation.Render(m, format)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&ranked, "ranked", nil, "ranked idea ids")
	cmd.Flags().StringSliceVar(&truth, "truth", nil, "ground truth idea ids")
	cmd.Flags().IntSliceVar(&kVals, "k", nil, "cutoffs (default 1,3,5,10)")
	cmd.Flags().StringVar(&format, "format", evaluation.FormatText, "report format (text, html, json)")
	cmd.Flags().IntVar(&folds, "folds", 0, "cross-validate with this many folds")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "shuffle seed for cross-validation")
	return cmd
}

func printCrossValidation(cv evaluation.CrossValidation) {
	fmt.Printf("Cross-validation over %d folds\n", cv.NFolds)
	rows := []struct {
		name string
		stat evaluation.StatAtK
	}{
		{"ndcg", cv.NDCG},
		{"precision", cv.Precision},
		{"recall", cv.Recall},
		{"f1", cv.F1},
	}
	for _, row := range rows {
		for _, k := range slices.Sorted(maps.Keys(row.stat)) {
			s := row.stat[k]
			fmt.Printf("  %-10s @%-3d %.4f ± %.4f\n", row.name, k, s.Mean, s.Std)
		}
	}
	fmt.Printf("  diversity       %.4f\n", cv.DiversityMean)
	fmt.Printf("  fairness        %.4f\n", cv.FairnessMean)
}
