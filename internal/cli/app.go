// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/diycursor/internal/assistant"
	"github.com/jeranaias/diycursor/internal/cloud"
	"github.com/jeranaias/diycursor/internal/config"
	"github.com/jeranaias/diycursor/internal/errs"
	"github.com/jeranaias/diycursor/internal/ollama"
	"github.com/jeranaias/diycursor/internal/project"
	"github.com/jeranaias/diycursor/internal/session"
	"github.com/jeranaias/diycursor/internal/storage"
	"github.com/jeranaias/diycursor/internal/workspace"
)

// App is the wired session layer shared by the TUI and the subcommands.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Prefs      *storage.Prefs
	Store      *workspace.Store
	Ollama     *ollama.Client
	Models     *session.ModelManager
	Files      *session.FileManager
	Assistant  *assistant.Controller
	Scaffolder *project.Scaffolder
}

// NewApp opens the preference database and the projects directory and
// restores the last model selection and credentials.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	projectsDir, err := config.ExpandPath(cfg.Workspace.ProjectsDir)
	if err != nil {
		return nil, err
	}
	stateDB, err := config.ExpandPath(cfg.Workspace.StateDB)
	if err != nil {
		return nil, err
	}

	prefs, err := storage.OpenPrefs(stateDB)
	if err != nil {
		return nil, err
	}

	// Commands such as ask and models never touch the projects directory,
	// so a failed bootstrap is only logged; project commands fail later.
	store := workspace.NewStore(projectsDir)
	if err := store.EnsureRoot(); err != nil {
		logger.Warn("failed to create projects directory", zap.String("dir", projectsDir), zap.Error(err))
	}

	local := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:     cfg.Local.OllamaURL,
		Timeout:     cfg.Local.Timeout(),
		PullTimeout: cfg.Local.PullTimeout(),
	}).WithLogger(logger)
	anthropic := cloud.NewAnthropicClient().
		WithBaseURL(cfg.Anthropic.BaseURL).
		WithVersion(cfg.Anthropic.Version).
		WithMaxTokens(cfg.Anthropic.MaxTokens).
		WithTimeout(cfg.Anthropic.Timeout()).
		WithLogger(logger)
	openai := cloud.NewOpenAIClient().
		WithBaseURL(cfg.OpenAI.BaseURL).
		WithMaxTokens(cfg.OpenAI.MaxTokens).
		WithTimeout(cfg.OpenAI.Timeout()).
		WithLogger(logger)

	models := session.NewModelManager(session.ModelDeps{
		Local:     local,
		Anthropic: anthropic,
		OpenAI:    openai,
		Prefs:     prefs,
		Logger:    logger,
	})
	if err := models.Restore(); err != nil {
		logger.Warn("failed to restore model selection", zap.Error(err))
	}

	files := session.NewFileManager(store, logger)
	files.OnProjectOpen(func(name string) {
		if err := prefs.Set(storage.KeyLastProject, name); err != nil {
			logger.Warn("failed to remember project", zap.String("project", name), zap.Error(err))
		}
	})

	return &App{
		Config:     cfg,
		Logger:     logger,
		Prefs:      prefs,
		Store:      store,
		Ollama:     local,
		Models:     models,
		Files:      files,
		Assistant:  assistant.NewController(files, models, logger),
		Scaffolder: project.NewScaffolder(store, project.ExecRunner{Logger: logger}, project.DefaultCatalog(), logger),
	}, nil
}

// Close releases the preference database.
func (a *App) Close() error {
	return a.Prefs.Close()
}

// LastProject returns the most recently opened project if it still exists.
func (a *App) LastProject() string {
	name, ok, err := a.Prefs.Get(storage.KeyLastProject)
	if err != nil || !ok || !a.Store.ProjectExists(name) {
		return ""
	}
	return name
}

// OpenProject opens name, or the last project when name is empty.
func (a *App) OpenProject(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = a.LastProject()
	}
	if name == "" {
		return errs.New(errs.KindInvalidInput, "no project given (use --project) and no project opened before")
	}
	if err := a.Files.OpenProject(ctx, name); err != nil {
		return fmt.Errorf("failed to open project %s: %w", name, err)
	}
	return nil
}
