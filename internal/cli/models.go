// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/diycursor/internal/cloud"
	"github.com/jeranaias/diycursor/internal/commands"
	"github.com/jeranaias/diycursor/internal/errs"
	"github.com/jeranaias/diycursor/internal/router"
)

func newModelsCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List, load and configure models",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List installed local models and the hosted catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			installed, err := app.Ollama.ListModels(cmd.Context())
			if err != nil {
				app.Logger.Warn("failed to list local models", zap.Error(err))
				fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render("Ollama is not reachable at "+app.Ollama.BaseURL()))
			}
			local := make([]string, 0, len(installed))
			sizes := make(map[string]string, len(installed))
			for _, m := range installed {
				local = append(local, m.Name)
				if m.Size > 0 {
					sizes[m.Name] = m.FormatSize()
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), commands.FormatModelList(local, app.Models, sizes))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "current",
		Short: "Show the loaded model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			current, ok := app.Models.Current()
			if !ok {
				return errs.ErrNoModelLoaded
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", current.Model, current.Backend.DisplayName())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "load <id>",
		Short: "Load a model, pulling it first when it is local and missing",
		Long: `Loads a model for the assistant and remembers it for the next start.

Identifiers starting with "claude" use Anthropic, identifiers starting with
"gpt" use OpenAI, and anything else is a local Ollama model. Hosted models
need an API key (see "models key").`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			loaded, err := app.Models.LoadModel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), done("Loaded", loaded.Model, "("+loaded.Backend.DisplayName()+")"))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "key <anthropic|openai> <secret>",
		Short: "Store the API key of a hosted provider",
		Long: `Stores the API key of a hosted provider in the local state database.
An empty secret ("") removes the stored key.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App()
			if err != nil {
				return err
			}
			backend, err := router.ParseBackend(args[0])
			if err != nil {
				return errs.Wrap(errs.KindInvalidInput, "unknown provider", err)
			}
			if err := app.Models.SetCredential(backend, args[1]); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if strings.TrimSpace(args[1]) == "" {
				fmt.Fprintln(out, "Removed "+backend.DisplayName()+" API key")
				return nil
			}
			fmt.Fprintln(out, done("Stored", backend.DisplayName(), "API key", cloud.MaskKey(args[1])))
			return nil
		},
	})

	return cmd
}
