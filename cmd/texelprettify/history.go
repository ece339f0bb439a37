// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framegrace/texelprettify/config"
	"github.com/framegrace/texelprettify/history"
	"github.com/framegrace/texelprettify/prettifier"
)

var (
	flagHistorySearch string
	flagHistoryFormat string
	flagHistoryLimit  int
	flagHistoryFull   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse the block archive",
	Long: `Lists archived blocks from past runs, newest first. Archival must be
enabled in config (history.enabled). --search matches any substring of block
content; --format filters by format ID.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagHistorySearch, "search", "", "substring to search for")
	historyCmd.Flags().StringVar(&flagHistoryFormat, "format", "", "only blocks of this format")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "max blocks to show")
	historyCmd.Flags().BoolVar(&flagHistoryFull, "full", false, "print full block content")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := cfg.History.Path
	if path == "" {
		path, err = config.DefaultHistoryPath()
		if err != nil {
			return err
		}
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	var blocks []history.ArchivedBlock
	switch {
	case flagHistorySearch != "":
		blocks, err = store.Search(flagHistorySearch, flagHistoryLimit)
	case flagHistoryFormat != "":
		blocks, err = store.BlocksByFormat(flagHistoryFormat, flagHistoryLimit)
	default:
		blocks, err = store.RecentBlocks(flagHistoryLimit)
	}
	if err != nil {
		return err
	}

	if len(blocks) == 0 {
		fmt.Println("no archived blocks")
		return nil
	}

	for _, b := range blocks {
		cmdNote := ""
		if b.Command != "" {
			cmdNote = "  $ " + b.Command
		}
		fmt.Printf("%s %-12s %.2f  %s%s\n",
			prettifier.BadgeForFormat(b.FormatID), b.FormatID, b.Confidence,
			b.Timestamp.Format("2006-01-02 15:04:05"), cmdNote)
		if flagHistoryFull {
			for _, line := range b.Lines() {
				fmt.Printf("    %s\n", line)
			}
		}
	}
	return nil
}
