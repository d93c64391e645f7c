// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/diycursor/internal/assistant"
	"github.com/jeranaias/diycursor/internal/commands"
	"github.com/jeranaias/diycursor/internal/errs"
	"github.com/jeranaias/diycursor/internal/project"
	"github.com/jeranaias/diycursor/internal/session"
	"github.com/jeranaias/diycursor/internal/workspace"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// ProjectsLoadedMsg carries the project names for the picker.
type ProjectsLoadedMsg struct {
	Names []string
	Err   error
}

// ProjectCreatedMsg reports a new project directory.
type ProjectCreatedMsg struct {
	Name string
}

// FileLoadedMsg carries the content of a file opened in the editor.
type FileLoadedMsg struct {
	Project string
	Path    string
	Content string
}

// SavedMsg reports a completed autosave.
type SavedMsg struct {
	Path string
}

// SaveErrorMsg reports a failed autosave.
type SaveErrorMsg struct {
	Path string
	Err  error
}

// AssistantDoneMsg reports that a submission finished. Failures are already
// recorded as a turn; Err only carries rejections such as ErrBusy.
type AssistantDoneMsg struct {
	Err error
}

// DiskChangedMsg reports files created or removed outside the workspace.
type DiskChangedMsg struct {
	Paths []string
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// LoadProjectsCmd lists the projects directory.
func LoadProjectsCmd(store *workspace.Store) tea.Cmd {
	return func() tea.Msg {
		names, err := store.Projects()
		return ProjectsLoadedMsg{Names: names, Err: err}
	}
}

// OpenProjectCmd makes name the active project.
func OpenProjectCmd(ctx context.Context, files *session.FileManager, name string) tea.Cmd {
	return func() tea.Msg {
		if err := files.OpenProject(ctx, name); err != nil {
			return commands.ErrorMsg{Err: err}
		}
		return commands.ProjectOpenedMsg{Project: name}
	}
}

// CreateProjectCmd creates a project from the picker input "name
// [template]". Without a template the project gets a README.
func CreateProjectCmd(ctx context.Context, scaffolder *project.Scaffolder, input string) tea.Cmd {
	fields := strings.Fields(input)
	return func() tea.Msg {
		var err error
		switch len(fields) {
		case 0:
			err = errs.New(errs.KindInvalidInput, "project name is required")
		case 1:
			err = scaffolder.CreateEmpty(fields[0])
		case 2:
			err = scaffolder.CreateFromTemplate(ctx, fields[0], fields[1])
		default:
			err = errs.New(errs.KindInvalidInput, "usage: <name> [template]")
		}
		if err != nil {
			return commands.ErrorMsg{Err: err}
		}
		return ProjectCreatedMsg{Name: fields[0]}
	}
}

// LoadFileCmd reads path from the project active when the command is made.
func LoadFileCmd(files *session.FileManager, path string) tea.Cmd {
	project := files.Project()
	return func() tea.Msg {
		content, err := files.ReadFile(path)
		if err != nil {
			return commands.ErrorMsg{Err: err}
		}
		return FileLoadedMsg{Project: project, Path: path, Content: content}
	}
}

// SubmitCmd sends a question to the assistant.
func SubmitCmd(ctx context.Context, c *assistant.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		return AssistantDoneMsg{Err: c.Submit(ctx, text)}
	}
}

// waitForEvent delivers the next message pushed from a background goroutine.
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

// waitForChanges delivers the next batch from a project watcher. A closed
// watcher yields nil and ends the subscription.
func waitForChanges(w *workspace.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		paths, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return DiskChangedMsg{Paths: paths}
	}
}

// post hands msg to the event loop without blocking a timer goroutine.
func post(events chan<- tea.Msg, msg tea.Msg) {
	select {
	case events <- msg:
	default:
	}
}
