// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/diycursor/internal/errs"
)

func newProjectCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Create, clone and list projects",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			names, err := app.Scaffolder.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No projects in "+app.Store.Root()))
				return nil
			}
			last := app.LastProject()
			for _, name := range names {
				if name == last {
					fmt.Fprintln(out, markStyle.Render("* "+name))
				} else {
					fmt.Fprintln(out, "  "+name)
				}
			}
			return nil
		},
	})

	var template string
	newCmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a project, empty or from a template",
		Long: `Creates a project directory. Without --template the project gets a
README.md; with --template the template's command runs in the new directory
and its files are written. See "project templates".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			name := args[0]
			if template == "" {
				err = app.Scaffolder.CreateEmpty(name)
			} else {
				err = app.Scaffolder.CreateFromTemplate(cmd.Context(), name, template)
			}
			if err != nil {
				return err
			}
			if err := app.OpenProject(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), done("Created", name))
			return nil
		},
	}
	newCmd.Flags().StringVarP(&template, "template", "t", "", "template id")
	cmd.AddCommand(newCmd)

	var branch string
	cloneCmd := &cobra.Command{
		Use:   "clone <url> <name>",
		Short: "Clone a git repository into a new project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			url, name := args[0], args[1]
			if err := app.Scaffolder.Clone(cmd.Context(), name, url, branch); err != nil {
				return err
			}
			if err := app.OpenProject(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), done("Cloned", url, "into", name))
			return nil
		},
	}
	cloneCmd.Flags().StringVarP(&branch, "branch", "b", "", "branch to check out")
	cmd.AddCommand(cloneCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "templates",
		Short: "List project templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			for _, t := range app.Scaffolder.Templates() {
				fmt.Fprintln(cmd.OutOrStdout(), label(t.ID)+t.Name)
			}
			return nil
		},
	})

	var force bool
	rmCmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a project and all its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			name := args[0]
			if !app.Store.ProjectExists(name) {
				return errs.New(errs.KindNotFound, "project not found: "+name)
			}
			if !force {
				return errs.New(errs.KindInvalidInput, "refusing to delete "+name+" without --force")
			}
			if err := app.Store.RemoveProject(name); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted "+name)
			return nil
		},
	}
	rmCmd.Flags().BoolVar(&force, "force", false, "confirm deletion")
	cmd.AddCommand(rmCmd)

	return cmd
}
