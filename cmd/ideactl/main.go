// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Command ideactl operates an Ideaforge store directly: add and seed ideas,
// ask for recommendations, submit feedback, evaluate rankings and print
// audit reports. It reads the same configuration as the server and must
// not run against a store the server has open.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/ideaforge/internal/app"
	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/logging"
)

// Version is set at build time.
var Version = "dev"

var (
	configPath string
	verbose    bool
	jsonOutput bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ideactl",
		Short:         "Ideaforge command line",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logCfg := logging.DefaultConfig()
			logCfg.Level = "warn"
			logCfg.Format = "console"
			if verbose {
				logCfg.Level = "debug"
			}
			logging.Init(logCfg)
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: CONFIG_PATH or ./config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON")

	root.AddCommand(
		addCmd(),
		seedCmd(),
		recommendCmd(),
		rateCmd(),
		compareCmd(),
		reviewCmd(),
		evaluateCmd(),
		auditCmd(),
	)
	return root
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

// withApp opens the stores for the duration of fn.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("close stores")
		}
	}()
	return fn(a)
}

// withFeedback is withApp with the feedback writer running.
func withFeedback(ctx context.Context, fn func(a *app.App) error) error {
	return withApp(ctx, func(a *app.App) error {
		stop, err := a.StartFeedback(ctx)
		if err != nil {
			return err
		}
		defer stop()
		return fn(a)
	})
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
