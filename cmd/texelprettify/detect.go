// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	texelprettify "github.com/framegrace/texelprettify"
	"github.com/framegrace/texelprettify/prettifier"
)

var (
	flagDetectRender  bool
	flagDetectCommand string
)

var detectCmd = &cobra.Command{
	Use:   "detect [file]",
	Short: "Classify captured text",
	Long: `Runs format detection over a file (or stdin) as a single content
block and prints the result: format, confidence, and the rules that matched.

Use --command to supply the shell command that produced the text; some rules
weigh the preceding command.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().BoolVar(&flagDetectRender, "render", false, "render the block with the winning format")
	detectCmd.Flags().StringVar(&flagDetectCommand, "command", "", "command that produced the text")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var data []byte
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
	} else {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	for i, line := range lines {
		lines[i] = stripANSI(line)
	}

	block := prettifier.ContentBlock{
		Lines:            lines,
		PrecedingCommand: flagDetectCommand,
		StartRow:         0,
		EndRow:           len(lines) - 1,
		Timestamp:        time.Now(),
	}

	reg := texelprettify.BuildRegistry(cfg)
	result := reg.Detect(&block)
	if result == nil {
		fmt.Println("no format detected")
		return nil
	}

	fmt.Printf("format:     %s %s\n", prettifier.BadgeForFormat(result.FormatID), result.FormatID)
	fmt.Printf("confidence: %.2f\n", result.Confidence)
	if len(result.MatchedRules) > 0 {
		fmt.Printf("rules:      %s\n", strings.Join(result.MatchedRules, ", "))
	}

	if flagDetectRender {
		renderer := reg.Renderer(result.FormatID)
		if renderer == nil {
			return fmt.Errorf("format %s: %w", result.FormatID, prettifier.ErrNoRenderer)
		}
		rendererCfg := prettifier.DefaultRendererConfig()
		if cfg.Renderer.ChromaStyle != "" {
			rendererCfg.ChromaStyle = cfg.Renderer.ChromaStyle
		}
		rendered, err := renderer.Render(&block, rendererCfg)
		if err != nil {
			return fmt.Errorf("rendering: %w", err)
		}
		for _, line := range rendered.Lines {
			fmt.Println(ansiLine(line))
		}
	}
	return nil
}
