// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/framegrace/texelprettify/config"
)

var (
	// Global flags.
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "texelprettify",
	Short: "Detect and prettify structured content in terminal output",
	Long: `texelprettify watches terminal output for structured content — JSON,
markdown, diffs, logs, YAML, stack traces — and renders a prettified view.

Blocks are found by boundary detection (command markers, blank runs,
inactivity), classified by weighted regex rules, and rendered with syntax
highlighting.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .texelprettify.yaml, then ~/.config/texelprettify/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the config honoring the --config flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagVerbose && cfg.ConfigFile != "" {
		fmt.Fprintf(os.Stderr, "using config %s\n", cfg.ConfigFile)
	}
	return cfg, nil
}
