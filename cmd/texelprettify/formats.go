// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	texelprettify "github.com/framegrace/texelprettify"
	"github.com/framegrace/texelprettify/prettifier"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List registered formats",
	Long: `Lists the formats the current configuration registers: badge, ID,
display name, and whether detection is active for it (renderers are always
available for manual prettify).`,
	RunE: runFormats,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

func runFormats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := texelprettify.BuildRegistry(cfg)

	detecting := make(map[string]bool)
	for _, d := range reg.Detectors() {
		detecting[d.FormatID()] = true
	}

	for _, f := range reg.RegisteredFormats() {
		id, name := f[0], f[1]
		state := "manual only"
		if detecting[id] {
			state = "detecting"
		}
		fmt.Printf("%s %-12s %-12s %s\n", prettifier.BadgeForFormat(id), id, name, state)
	}

	if flagVerbose {
		fmt.Printf("\n%d detectors, %d renderers, confidence threshold %.2f\n",
			reg.DetectorCount(), reg.RendererCount(), reg.ConfidenceThreshold())
	}
	return nil
}
