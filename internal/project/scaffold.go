// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/diycursor/internal/errs"
	"github.com/jeranaias/diycursor/internal/workspace"
)

// =============================================================================
// SCAFFOLDER
// =============================================================================

// Scaffolder creates projects in a workspace store: empty, from a template
// or by cloning a git repository. A creation that fails part way removes the
// directory it made; an existing project is never touched.
type Scaffolder struct {
	store   *workspace.Store
	runner  Runner
	catalog *Catalog
	logger  *zap.Logger
}

// NewScaffolder creates a scaffolder. A nil catalog selects the built-in
// templates and a nil runner executes real processes.
func NewScaffolder(store *workspace.Store, runner Runner, catalog *Catalog, logger *zap.Logger) *Scaffolder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Scaffolder{store: store, runner: runner, catalog: catalog, logger: logger}
}

// List returns the existing project names.
func (s *Scaffolder) List() ([]string, error) {
	return s.store.Projects()
}

// Templates lists the available templates in catalog order.
func (s *Scaffolder) Templates() []TemplateInfo {
	return s.catalog.List()
}

// CreateEmpty creates a project holding only a README.
func (s *Scaffolder) CreateEmpty(name string) error {
	return s.create(name, func(string) error {
		return s.store.Create(name, "README.md", fmt.Sprintf("# %s\n\nWelcome to your new project.", name))
	})
}

// CreateFromTemplate creates a project and runs the template's command in it,
// then writes its directories and files and runs its post-commands.
func (s *Scaffolder) CreateFromTemplate(ctx context.Context, name, templateID string) error {
	tmpl, ok := s.catalog.Get(templateID)
	if !ok {
		return errs.New(errs.KindNotFound, fmt.Sprintf("Template %q not found", templateID))
	}

	return s.create(name, func(dir string) error {
		if err := s.shell(ctx, dir, tmpl.Command); err != nil {
			return err
		}
		for _, d := range tmpl.Dirs {
			if err := os.MkdirAll(filepath.Join(dir, filepath.FromSlash(d)), 0755); err != nil {
				return errs.Wrap(errs.KindStorage, "failed to create directory "+d, err)
			}
		}
		for _, f := range tmpl.Files {
			if err := s.store.Write(name, f.Path, render(f.Content, name)); err != nil {
				return err
			}
		}
		for _, c := range tmpl.PostCommands {
			if err := s.shell(ctx, dir, c); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clone creates a project by cloning url, optionally at branch.
func (s *Scaffolder) Clone(ctx context.Context, name, url, branch string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errs.New(errs.KindInvalidInput, "repository URL is required")
	}

	args := []string{"clone"}
	if b := strings.TrimSpace(branch); b != "" {
		args = append(args, "--branch", b)
	}
	args = append(args, url, ".")

	return s.create(name, func(dir string) error {
		if err := s.runner.Run(ctx, dir, "git", args...); err != nil {
			return commandFailed("git clone", err)
		}
		return nil
	})
}

// create makes the project directory, runs fill and removes the directory
// again if fill fails.
func (s *Scaffolder) create(name string, fill func(dir string) error) error {
	dir, err := s.store.CreateProject(name)
	if err != nil {
		return err
	}

	if err := fill(dir); err != nil {
		s.logger.Warn("project creation failed, removing directory",
			zap.String("project", name), zap.Error(err))
		if rmErr := s.store.RemoveProject(name); rmErr != nil {
			s.logger.Error("failed to remove partial project",
				zap.String("project", name), zap.Error(rmErr))
		}
		return err
	}

	s.logger.Info("project created", zap.String("project", name))
	return nil
}

func (s *Scaffolder) shell(ctx context.Context, dir, command string) error {
	prog, args := ShellCommand(command)
	if err := s.runner.Run(ctx, dir, prog, args...); err != nil {
		return commandFailed(command, err)
	}
	return nil
}

func commandFailed(command string, err error) error {
	if errs.KindOf(err) != errs.KindUnknown {
		return err
	}
	return errs.Wrap(errs.KindCommandFailed, "command failed: "+command, err)
}
