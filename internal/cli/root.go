// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/diycursor/internal/config"
	"github.com/jeranaias/diycursor/internal/logging"
	"github.com/jeranaias/diycursor/internal/terminal"
	"github.com/jeranaias/diycursor/internal/ui"
)

// Version information, set at build time through main.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// state is shared by every command of one invocation. The config and logger
// are loaded before any command runs; the App is opened on first use.
type state struct {
	configPath string
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
	app    *App
}

// loadConfig reads the configuration. A broken default config file is
// reported on stderr and the defaults are used.
func (s *state) loadConfig(cmd *cobra.Command) error {
	if s.configPath != "" {
		cfg, err := config.LoadFromPathOrDefault(s.configPath)
		if err != nil {
			return err
		}
		s.cfg = cfg
		return nil
	}

	cfg, err := config.Load()
	if cfg == nil {
		return err
	}
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), failStyle.Render("Warning:")+" "+err.Error()+" (using defaults)")
	}
	s.cfg = cfg
	return nil
}

func (s *state) initLogger() error {
	file, err := config.ExpandPath(s.cfg.Logging.File)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{
		Level: s.cfg.Logging.Level,
		File:  file,
		Debug: s.debug,
	})
	if err != nil {
		return err
	}
	s.logger = logger
	return nil
}

// App opens the session layer once per invocation.
func (s *state) App() (*App, error) {
	if s.app != nil {
		return s.app, nil
	}
	app, err := NewApp(s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	s.app = app
	return app, nil
}

func (s *state) close() {
	if s.app != nil {
		if err := s.app.Close(); err != nil {
			s.logger.Warn("failed to close state database", zap.Error(err))
		}
		s.app = nil
	}
	if s.logger != nil {
		_ = s.logger.Sync()
	}
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCmd builds the diycursor command tree.
func NewRootCmd() *cobra.Command {
	root, _ := newRootCmd()
	return root
}

// newRootCmd also returns the invocation state so callers can release it
// when a command fails, since cobra skips post-run hooks on error.
func newRootCmd() (*cobra.Command, *state) {
	s := &state{}

	root := &cobra.Command{
		Use:   "diycursor",
		Short: "A terminal mini IDE with pluggable model backends",
		Long: `diycursor is a small IDE for the terminal: a project picker, a file
editor with autosave, an AI assistant backed by a local Ollama model or a
hosted Anthropic/OpenAI model, and a simulated terminal.

Run without arguments to start the workspace UI.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := s.loadConfig(cmd); err != nil {
				return err
			}
			return s.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			s.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspace(cmd, s)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("diycursor {{.Version}} (commit %s, built %s)\n", GitCommit, BuildDate))

	root.PersistentFlags().StringVar(&s.configPath, "config", "", "load configuration from `file`")
	root.PersistentFlags().BoolVar(&s.debug, "debug", false, "log at debug level")

	root.AddCommand(
		newAskCmd(s),
		newModelsCmd(s),
		newProjectCmd(s),
		newFilesCmd(s),
		newTermCmd(s),
		newConfigCmd(s),
	)
	return root, s
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	useStdoutProfile()
	root, s := newRootCmd()
	defer s.close()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, failStyle.Render("Error:")+" "+err.Error())
		return 1
	}
	return 0
}

// runWorkspace starts the TUI on the last opened project.
func runWorkspace(cmd *cobra.Command, s *state) error {
	if err := requireInteractive(); err != nil {
		return err
	}
	app, err := s.App()
	if err != nil {
		return err
	}
	app.Logger.Info("starting workspace", zap.String("version", Version))

	return ui.Run(cmd.Context(), ui.Deps{
		Store:          app.Store,
		Scaffolder:     app.Scaffolder,
		Models:         app.Models,
		Files:          app.Files,
		Assistant:      app.Assistant,
		Shell:          terminal.NewShell(),
		Logger:         app.Logger,
		AutosaveDelay:  app.Config.Editor.AutosaveDelay(),
		WatchDebounce:  app.Config.Workspace.WatchDebounce(),
		InitialProject: app.LastProject(),
	})
}

// joinArgs rebuilds a free-text argument split by the shell.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
