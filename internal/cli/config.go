// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/diycursor/internal/config"
	"github.com/jeranaias/diycursor/internal/errs"
)

func newConfigCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and edit the configuration",
	}

	var asJSON bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(s.cfg, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			fmt.Fprint(out, s.cfg.String())
			return nil
		},
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	cmd.AddCommand(showCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := s.configFile()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := s.configFile()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errs.New(errs.KindAlreadyExists, path+" already exists (use --force to overwrite)")
			}
			if err := saveConfig(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), done("Wrote", path))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	cmd.AddCommand(&cobra.Command{
		Use:       "get <key>",
		Short:     "Print one setting, e.g. local.ollama_url",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.GetAllKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := s.cfg.Get(args[0])
			if err != nil {
				return errs.Wrap(errs.KindInvalidInput, "unknown setting", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and save the file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := s.configFile()
			if err != nil {
				return err
			}
			cfg := s.cfg.Clone()
			if err := cfg.Set(args[0], args[1]); err != nil {
				return errs.Wrap(errs.KindInvalidInput, "cannot set "+args[0], err)
			}
			if err := cfg.Validate(); err != nil {
				return errs.Wrap(errs.KindInvalidInput, "invalid value", err)
			}
			if err := saveConfig(cfg, path); err != nil {
				return err
			}
			s.cfg = cfg
			fmt.Fprintln(cmd.OutOrStdout(), label(args[0])+args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "List every setting name",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(config.GetAllKeys(), "\n"))
		},
	})

	return cmd
}

// configFile is the --config path or the default TOML file.
func (s *state) configFile() (string, error) {
	if s.configPath != "" {
		return s.configPath, nil
	}
	return config.ConfigPathTOML()
}

func saveConfig(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}
