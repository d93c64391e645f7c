// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/diycursor/internal/assistant"
)

func newAskCmd(s *state) *cobra.Command {
	var (
		projectName string
		file        string
		modelID     string
		raw         bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the loaded model a single question",
		Long: `Sends one question to the loaded model and prints the answer.

With --file the question is asked about that file of the project given by
--project (default: the last opened project), the same way the workspace
assistant does.

Examples:
  diycursor ask "How do I read a file in Go?"
  diycursor ask --file src/main.go "What does this do?"
  diycursor ask --model gpt-4o "Explain CRDTs briefly"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if modelID != "" {
				if _, err := app.Models.LoadModel(ctx, modelID); err != nil {
					return err
				}
			}

			var content string
			if projectName != "" || file != "" {
				if err := app.OpenProject(ctx, projectName); err != nil {
					return err
				}
			}
			if file != "" {
				if content, err = app.Files.ReadFile(file); err != nil {
					return err
				}
			}

			prompt := assistant.BuildPrompt(app.Files.Project(), file, content, joinArgs(args))
			reply, err := app.Models.Generate(ctx, prompt)
			if err != nil {
				app.Logger.Warn("ask failed", zap.Error(err))
				return err
			}
			return printReply(cmd.OutOrStdout(), reply, raw)
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "project the question is about")
	cmd.Flags().StringVarP(&file, "file", "f", "", "include this project file with the question")
	cmd.Flags().StringVarP(&modelID, "model", "m", "", "load this model before asking")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the answer without markdown rendering")
	return cmd
}

// printReply renders markdown only when w is a terminal so piped output
// stays plain.
func printReply(w io.Writer, reply string, raw bool) error {
	o := detectOutput(w)
	if raw || !o.tty {
		_, err := fmt.Fprintln(w, reply)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(o.wrapWidth()),
	)
	if err == nil {
		if rendered, rerr := renderer.Render(reply); rerr == nil {
			_, err = fmt.Fprint(w, rendered)
			return err
		}
	}
	_, err = fmt.Fprintln(w, reply)
	return err
}
