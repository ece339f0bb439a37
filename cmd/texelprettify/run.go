// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	texelprettify "github.com/framegrace/texelprettify"
	"github.com/framegrace/texelprettify/config"
	"github.com/framegrace/texelprettify/history"
	"github.com/framegrace/texelprettify/prettifier"
)

var flagRunRender bool

var runCmd = &cobra.Command{
	Use:   "run [command...]",
	Short: "Run a command under a pty and prettify its output",
	Long: `Runs a command under a pseudo-terminal, passes its output through
unchanged, and feeds it to the detection pipeline. When the command exits,
detected blocks are listed (and rendered with --render).

Without arguments, runs $SHELL.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&flagRunRender, "render", true, "render detected blocks after the command exits")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	command := args
	if len(command) == 0 {
		shell := os.Getenv("SHELL")
		if shell == "" {
			shell = "/bin/sh"
		}
		command = []string{shell}
	}

	width, height := 80, 24
	stdinFd := int(os.Stdin.Fd())
	interactive := term.IsTerminal(stdinFd)
	if interactive {
		if w, h, err := term.GetSize(stdinFd); err == nil {
			width, height = w, h
		}
	}

	pipeline := texelprettify.NewPipelineFromConfig(cfg, width)
	if pipeline == nil {
		return fmt.Errorf("prettifier is disabled in config; enable it or run the command directly")
	}

	child := exec.Command(command[0], command[1:]...)
	child.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.StartWithSize(child, &pty.Winsize{
		Rows: uint16(height),
		Cols: uint16(width),
	})
	if err != nil {
		return fmt.Errorf("starting pty: %w", err)
	}
	defer ptmx.Close()

	if interactive {
		oldState, err := term.MakeRaw(stdinFd)
		if err != nil {
			return fmt.Errorf("entering raw mode: %w", err)
		}
		defer term.Restore(stdinFd, oldState)
	}

	// Keep the child's winsize in sync with ours.
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)
	go func() {
		for range winch {
			pty.InheritSize(os.Stdin, ptmx)
		}
	}()

	go io.Copy(ptmx, os.Stdin)

	// The pipeline is not safe for concurrent use: the reader goroutine only
	// forwards raw bytes and cleaned lines, all pipeline calls happen here.
	lines := make(chan string, 256)
	altEvents := make(chan bool, 4)
	go readOutput(ptmx, lines, altEvents)

	pipeline.OnCommandStart(strings.Join(command, " "))

	row := 0
	altActive := false
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for open := true; open; {
		select {
		case entering := <-altEvents:
			altActive = entering
			pipeline.OnAltScreenChange(entering)
		case line, ok := <-lines:
			if !ok {
				open = false
				break
			}
			if altActive && cfg.RespectAlternateScreen {
				continue
			}
			pipeline.ProcessOutput(line, row)
			row++
		case <-ticker.C:
			pipeline.CheckDebounce()
		}
	}

	err = child.Wait()
	pipeline.OnCommandEnd()
	pipeline.Flush()

	reportBlocks(pipeline, cfg)

	if err != nil {
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// readOutput forwards pty output to stdout untouched, sends cleaned lines
// for detection, and reports alternate-screen transitions. Closes the lines
// channel on EOF.
func readOutput(ptmx *os.File, lines chan<- string, altEvents chan<- bool) {
	defer close(lines)

	reader := bufio.NewReader(ptmx)
	var current strings.Builder
	for {
		b, err := reader.ReadByte()
		if err != nil {
			if current.Len() > 0 {
				lines <- stripANSI(current.String())
			}
			return
		}
		os.Stdout.Write([]byte{b})
		switch b {
		case '\n':
			lines <- stripANSI(current.String())
			current.Reset()
		case '\r':
			// Dropped; pty output uses CRLF.
		default:
			current.WriteByte(b)
			if b == 'h' || b == 'l' {
				if entering, ok := altScreenSwitch(current.String()); ok {
					altEvents <- entering
				}
			}
		}
	}
}

// altScreenSwitch reports whether the buffered bytes end in an
// alternate-screen enter (true) or exit (false) sequence.
func altScreenSwitch(buf string) (entering bool, ok bool) {
	if len(buf) < 2 {
		return false, false
	}
	body := buf[:len(buf)-1]
	for _, prefix := range []string{"\x1b[?1049", "\x1b[?47"} {
		if strings.HasSuffix(body, prefix) {
			return buf[len(buf)-1] == 'h', true
		}
	}
	return false, false
}

// reportBlocks prints what was detected, optionally rendered, and archives
// blocks when history is enabled.
func reportBlocks(pipeline *prettifier.Pipeline, cfg *config.Config) {
	blocks := pipeline.ActiveBlocks()
	if len(blocks) == 0 {
		return
	}

	var store history.Store
	if cfg.History.Enabled {
		path := cfg.History.Path
		if path == "" {
			var err error
			path, err = config.DefaultHistoryPath()
			if err != nil {
				fmt.Fprintf(os.Stderr, "history disabled: %v\n", err)
			}
		}
		if path != "" {
			s, err := history.Open(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "history disabled: %v\n", err)
			} else {
				store = s
				defer s.Close()
			}
		}
	}

	fmt.Printf("\r\ndetected %d block(s):\r\n", len(blocks))
	for _, block := range blocks {
		det := block.Detection
		src := block.Content()
		fmt.Printf("  %s %s  confidence %.2f  rows %d-%d\r\n",
			prettifier.BadgeForFormat(det.FormatID), det.FormatID,
			det.Confidence, src.StartRow, src.EndRow)

		if flagRunRender {
			if rendered := block.Buffer.Rendered(); rendered != nil {
				for _, line := range rendered.Lines {
					fmt.Printf("    %s\r\n", ansiLine(line))
				}
			}
		}

		if store != nil {
			if err := store.SaveBlock(src, &det); err != nil {
				fmt.Fprintf(os.Stderr, "archiving block: %v\n", err)
			}
		}
	}

	if cfg.History.MaxBlocks > 0 {
		if store != nil {
			store.Prune(cfg.History.MaxBlocks)
		}
		pipeline.TrimBlocks(cfg.History.MaxBlocks)
	}
}
