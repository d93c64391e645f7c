// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/diycursor/internal/ui"
)

func newFilesCmd(s *state) *cobra.Command {
	var projectName string

	cmd := &cobra.Command{
		Use:   "files",
		Short: "Work with the files of a project",
		Long: `Lists, prints, creates and deletes project files. Paths are relative
to the project. The project defaults to the last one opened.`,
	}
	cmd.PersistentFlags().StringVarP(&projectName, "project", "p", "", "project (default: last opened)")

	// open returns the App with the project open.
	open := func(cmd *cobra.Command) (*App, error) {
		app, err := s.App()
		if err != nil {
			return nil, err
		}
		if err := app.OpenProject(cmd.Context(), projectName); err != nil {
			return nil, err
		}
		return app, nil
	}

	var flat bool
	lsCmd := &cobra.Command{
		Use:   "ls",
		Short: "List files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := open(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flat {
				for _, f := range app.Files.Files() {
					fmt.Fprintln(out, f)
				}
				return nil
			}
			for _, g := range app.Files.Tree() {
				indent := ""
				if g.Dir != "" {
					fmt.Fprintln(out, headingStyle.Render(g.Dir+"/"))
					indent = "  "
				}
				for _, f := range g.Files {
					fmt.Fprintln(out, indent+f)
				}
			}
			return nil
		},
	}
	lsCmd.Flags().BoolVar(&flat, "flat", false, "print full paths, one per line")
	cmd.AddCommand(lsCmd)

	var plain bool
	catCmd := &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a file, highlighted when stdout is a terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := open(cmd)
			if err != nil {
				return err
			}
			content, err := app.Files.ReadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !plain && detectOutput(out).color {
				content = ui.Highlight(content, args[0])
			}
			fmt.Fprint(out, content)
			if !strings.HasSuffix(content, "\n") {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	catCmd.Flags().BoolVar(&plain, "plain", false, "never highlight")
	cmd.AddCommand(catCmd)

	var content string
	newCmd := &cobra.Command{
		Use:   "new <path>",
		Short: "Create a file; fails if it exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := open(cmd)
			if err != nil {
				return err
			}
			if err := app.Files.CreateFile(cmd.Context(), args[0], content); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), done("Created", args[0]))
			return nil
		},
	}
	newCmd.Flags().StringVarP(&content, "content", "c", "", "initial content")
	cmd.AddCommand(newCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "write <path>",
		Short: "Replace a file with standard input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := open(cmd)
			if err != nil {
				return err
			}
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read standard input: %w", err)
			}
			if err := app.Files.WriteFile(args[0], string(data)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", len(data), args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := open(cmd)
			if err != nil {
				return err
			}
			if err := app.Files.DeleteFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted "+args[0])
			return nil
		},
	})

	return cmd
}
