// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/diycursor/internal/config"
	"github.com/jeranaias/diycursor/internal/terminal"
)

// lineReader reads prompted input lines with history.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func newTermCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "term",
		Short: "Run the simulated terminal",
		Long: `Runs the workspace's simulated terminal on the command line. It runs
no programs; type "help" for its commands and "exit" or Ctrl+D to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := newTermPrompt()
			defer prompt.Close()
			return runTerm(cmd.OutOrStdout(), terminal.NewShell(), prompt)
		},
	}
}

// runTerm prints the banner and executes lines until exit or end of input.
func runTerm(out io.Writer, shell *terminal.Shell, in lineReader) error {
	for _, line := range shell.History() {
		fmt.Fprintln(out, line)
	}

	for {
		input, err := in.Prompt(terminal.Prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		trimmed := strings.ToLower(strings.TrimSpace(input))
		if trimmed == "" {
			continue
		}
		in.AppendHistory(input)
		if trimmed == "exit" || trimmed == "quit" {
			return nil
		}

		lines := shell.Execute(input)
		if trimmed == "clear" {
			fmt.Fprint(out, "\033[H\033[2J")
			continue
		}
		// The echoed input line is already on screen.
		for _, line := range lines[1:] {
			fmt.Fprintln(out, line)
		}
	}
}

// =============================================================================
// LINE EDITING
// =============================================================================

// termPrompt is a liner session whose history persists in the config
// directory.
type termPrompt struct {
	*liner.State
	historyFile string
}

func newTermPrompt() *termPrompt {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	p := &termPrompt{State: line, historyFile: filepath.Join(dir, "term_history")}

	if f, err := os.Open(p.historyFile); err == nil {
		p.ReadHistory(f)
		f.Close()
	}
	return p
}

// Close saves the history with owner-only permissions and restores the
// terminal.
func (p *termPrompt) Close() error {
	if err := os.MkdirAll(filepath.Dir(p.historyFile), 0700); err == nil {
		if f, err := os.OpenFile(p.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			p.WriteHistory(f)
			f.Close()
		}
	}
	return p.State.Close()
}
