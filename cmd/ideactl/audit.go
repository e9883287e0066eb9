// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/ideaforge/internal/app"
)

func auditCmd() *cobra.Command {
	var chainOnly bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Print the integrity and fairness audit report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				if chainOnly {
					res := a.Ledger.Verify()
					if jsonOutput {
						return printJSON(res)
					}
					fmt.Printf("Chain valid: %t (%d blocks)\n", res.Valid, res.ChainLength)
					for _, e := range res.Errors {
						fmt.Printf("  block %d: %s\n", e.BlockIndex, e.Error)
					}
					return nil
				}

				rep, err := a.Reporter.Build(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(rep)
				}

				fmt.Printf("Audit %s: %s\n", rep.RunID, rep.Status)
				fmt.Printf("  records          %d valid of %d (%.1f%%)\n",
					rep.Integrity.Valid, rep.Integrity.Total, rep.Integrity.ValidityRate*100)
				for _, id := range rep.Integrity.TamperedIDs {
					fmt.Printf("  tampered         %s\n", id)
				}
				fmt.Printf("  avg integrity    %.3f\n", rep.AverageIntegrity)
				if rep.Chain != nil {
					fmt.Printf("  chain            %d blocks, %d ideas, valid %t\n",
						rep.Chain.TotalBlocks, rep.Chain.UniqueIdeas, rep.Chain.ChainValid)
				}
				fmt.Printf("  bias detected    %t\n", rep.Bias.BiasDetected)
				for _, r := range rep.Bias.Recommendations {
					fmt.Printf("    - %s\n", r)
				}
				for _, s := range rep.StagnantIdeas {
					fmt.Printf("  stagnant         %s (%d days)\n", s.Title, s.DaysStagnant)
				}
				fmt.Printf("  federated rounds %d\n", rep.FederatedRounds)
				fmt.Printf("  optimizer runs   %d\n", rep.MetaLearningRuns)
				if rep.BestMetric != nil {
					fmt.Printf("  best metric      %.4f\n", *rep.BestMetric)
				}
				fmt.Printf("  manifest         %s\n", rep.Manifest.ManifestHash)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&chainOnly, "chain", false, "only verify the provenance chain")
	return cmd
}
