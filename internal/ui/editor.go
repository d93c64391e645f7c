// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/diycursor/internal/session"
)

// editorPane edits the current file. Every change is handed to the
// autosaver; dirty stays set until a save of this path lands with nothing
// else pending.
type editorPane struct {
	area    textarea.Model
	project string
	path    string
	dirty   bool
}

func newEditorPane() editorPane {
	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Placeholder = "Select a file to edit"
	return editorPane{area: ta}
}

// Load replaces the buffer with a freshly read file.
func (e *editorPane) Load(project, path, content string) {
	e.project = project
	e.path = path
	e.dirty = false
	e.area.SetValue(content)
	e.area.CursorStart()
}

// Close empties the editor, e.g. after its file was deleted.
func (e *editorPane) Close() {
	e.project = ""
	e.path = ""
	e.dirty = false
	e.area.Reset()
}

// Update forwards msg to the text area and schedules an autosave when the
// content changed.
func (e *editorPane) Update(msg tea.Msg, saver *session.Autosaver) tea.Cmd {
	if e.path == "" {
		return nil
	}
	before := e.area.Value()
	var cmd tea.Cmd
	e.area, cmd = e.area.Update(msg)
	if after := e.area.Value(); after != before {
		e.dirty = true
		saver.Schedule(e.project, e.path, after)
	}
	return cmd
}

// Saved clears the dirty flag when the save matches this file.
func (e *editorPane) Saved(path string, pending bool) {
	if path == e.path && !pending {
		e.dirty = false
	}
}

// SetSize fits the text area into the pane.
func (e *editorPane) SetSize(width, height int) {
	e.area.SetWidth(width)
	e.area.SetHeight(height)
}
