// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`database:
  path: %s
  max_memory: 256MB
  threads: 1
ledger:
  path: %s
  sync_writes: false
embedding:
  provider: hash
  dimension: 64
generator:
  provider: rule
`, filepath.Join(dir, "ideas.duckdb"), filepath.Join(dir, "ledger"))

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	root := rootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := rootCmd()
	for _, name := range []string{"add", "seed", "recommend", "rate", "compare", "review", "evaluate", "audit"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"evaluate without input", []string{"evaluate"}},
		{"rate non-integer stars", []string{"rate", "abc", "five"}},
		{"compare bad preference", []string{"compare", "a", "b", "maybe"}},
		{"review out of range", []string{"review", "abc", "--relevance", "2"}},
		{"recommend without query", []string{"recommend"}},
		{"add without title", []string{"add", "--description", "long enough description"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(t, tt.args...); err == nil {
				t.Errorf("Execute(%v) = nil, want error", tt.args)
			}
		})
	}
}

func TestEvaluate_Ranking(t *testing.T) {
	for _, format := range []string{"text", "json", "html"} {
		if err := run(t, "evaluate", "--ranked", "a,b,c", "--truth", "b,c", "--k", "1,3", "--format", format); err != nil {
			t.Errorf("evaluate --format %s: %v", format, err)
		}
	}
}

func TestSeedRecommendAudit(t *testing.T) {
	cfg := writeConfig(t)

	steps := [][]string{
		{"seed", "--config", cfg},
		{"seed", "--config", cfg, "--json"},
		{"recommend", "--config", cfg, "sustainable energy", "-k", "3"},
		{"recommend", "--config", cfg, "healthcare privacy", "--diversify", "--view", "market", "--json"},
		{"audit", "--config", cfg},
		{"audit", "--config", cfg, "--chain"},
		{"evaluate", "--config", cfg, "--folds", "2"},
	}
	for _, args := range steps {
		if err := run(t, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}
}

func TestSeed_File(t *testing.T) {
	cfg := writeConfig(t)
	file := filepath.Join(t.TempDir(), "ideas.json")
	data := `[{"title":"Community Solar Cooperative","description":"Shared rooftop solar ownership for apartment residents with transparent billing","tags":["energy","community"]}]`
	if err := os.WriteFile(file, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := run(t, "seed", "--config", cfg, "--file", file); err != nil {
		t.Fatalf("seed --file: %v", err)
	}
	if err := run(t, "seed", "--config", cfg, "--file", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("seed with missing file = nil, want error")
	}
}
