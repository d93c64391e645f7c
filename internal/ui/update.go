// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.shutdown()
	}

	if m.cmdline.active {
		return m.handleCmdLineKey(msg)
	}

	if m.confirmClear {
		m.confirmClear = false
		if key.Matches(msg, m.keys.Confirm) {
			m.deps.Assistant.Clear()
			m.renderAssistant()
			m.setInfo("Conversation cleared")
		} else {
			m.setInfo("Clear cancelled")
		}
		return m, nil
	}

	if m.helpText != "" && (msg.Type == tea.KeyEsc || key.Matches(msg, m.keys.Help)) {
		m.helpText = ""
		return m, nil
	}

	if key.Matches(msg, m.keys.Projects) && !m.picker.creating {
		m.setFocus(FocusPicker)
		return m, LoadProjectsCmd(m.deps.Store)
	}

	switch m.focus {
	case FocusPicker:
		return m.handlePickerKey(msg)
	case FocusFiles:
		return m.handleFilesKey(msg)
	case FocusEditor:
		return m.handleEditorKey(msg)
	case FocusAssistant:
		return m.handleAssistantKey(msg)
	case FocusTerminal:
		return m.handleTerminalKey(msg)
	}
	return m, nil
}

func (m Model) handleCmdLineKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.cmdline.Close()
		return m, nil
	case msg.Type == tea.KeyEnter:
		return m.runCommand(m.cmdline.Close())
	case key.Matches(msg, m.keys.Complete):
		m.cmdline.Complete()
		return m, nil
	}
	var cmd tea.Cmd
	m.cmdline.input, cmd = m.cmdline.input.Update(msg)
	m.cmdline.Edited()
	return m, cmd
}

// handleGlobal covers the bindings shared by the non-editing panes. ok is
// false when the key was not consumed.
func (m Model) handleGlobal(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.NextPane):
		m.cycleFocus(1)
		return m, nil, true
	case key.Matches(msg, m.keys.PrevPane):
		m.cycleFocus(-1)
		return m, nil, true
	case key.Matches(msg, m.keys.Terminal):
		m.setFocus(FocusTerminal)
		return m, nil, true
	case key.Matches(msg, m.keys.CopyReply):
		next, cmd := m.runCommand(":copy")
		return next.(Model), cmd, true
	case msg.String() == "ctrl+k":
		m.cmdline.Open()
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.busy {
		return m, nil
	}
	if m.picker.creating {
		switch msg.Type {
		case tea.KeyEsc:
			m.picker.StopCreate()
			return m, nil
		case tea.KeyEnter:
			input := m.picker.StopCreate()
			m.picker.busy = true
			return m, CreateProjectCmd(m.ctx, m.deps.Scaffolder, input)
		}
		var cmd tea.Cmd
		m.picker.input, cmd = m.picker.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.picker.Move(-1)
	case key.Matches(msg, m.keys.Down):
		m.picker.Move(1)
	case key.Matches(msg, m.keys.Open):
		if name := m.picker.Selected(); name != "" {
			return m, OpenProjectCmd(m.ctx, m.deps.Files, name)
		}
	case key.Matches(msg, m.keys.NewProj):
		m.picker.StartCreate()
	case key.Matches(msg, m.keys.Command):
		m.cmdline.Open()
	case msg.Type == tea.KeyEsc:
		if m.deps.Files.Project() != "" {
			m.setFocus(FocusFiles)
		}
	}
	return m, nil
}

func (m Model) handleFilesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.files.filtering {
		switch msg.Type {
		case tea.KeyEsc:
			m.files.StopFilter()
			return m, nil
		case tea.KeyEnter:
			return m.openSelected()
		case tea.KeyUp:
			m.files.Move(-1)
			return m, nil
		case tea.KeyDown:
			m.files.Move(1)
			return m, nil
		}
		var cmd tea.Cmd
		m.files.filter, cmd = m.files.filter.Update(msg)
		m.files.apply()
		return m, cmd
	}

	if next, cmd, ok := m.handleGlobal(msg); ok {
		return next, cmd
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		m.files.Move(-1)
	case key.Matches(msg, m.keys.Down):
		m.files.Move(1)
	case key.Matches(msg, m.keys.Open):
		return m.openSelected()
	case key.Matches(msg, m.keys.Filter):
		m.files.StartFilter()
	case key.Matches(msg, m.keys.Command):
		m.cmdline.Open()
	case key.Matches(msg, m.keys.Help):
		m.showFullHelp = !m.showFullHelp
	}
	return m, nil
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.setFocus(FocusFiles)
		return m, nil
	case key.Matches(msg, m.keys.Save):
		if err := m.autosaver.Flush(); err != nil {
			m.setError(err)
			return m, nil
		}
		m.editor.dirty = false
		m.setInfo("Saved " + m.editor.path)
		return m, nil
	case key.Matches(msg, m.keys.Terminal):
		m.setFocus(FocusTerminal)
		return m, nil
	case msg.String() == "ctrl+k":
		m.cmdline.Open()
		return m, nil
	}
	return m, m.editor.Update(msg, m.autosaver)
}

func (m Model) handleAssistantKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEnter:
		return m.submit()
	case msg.Type == tea.KeyEsc:
		m.setFocus(FocusFiles)
		return m, nil
	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.assistant.viewport, cmd = m.assistant.viewport.Update(msg)
		return m, cmd
	case msg.String() == ":" && m.assistant.input.Value() == "":
		m.cmdline.Open()
		return m, nil
	}
	if next, cmd, ok := m.handleGlobal(msg); ok {
		return next, cmd
	}
	var cmd tea.Cmd
	m.assistant.input, cmd = m.assistant.input.Update(msg)
	return m, cmd
}

func (m Model) handleTerminalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEnter:
		m.term.Run()
		return m, nil
	case msg.Type == tea.KeyEsc:
		m.setFocus(FocusFiles)
		return m, nil
	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.term.viewport, cmd = m.term.viewport.Update(msg)
		return m, cmd
	}
	if next, cmd, ok := m.handleGlobal(msg); ok {
		return next, cmd
	}
	var cmd tea.Cmd
	m.term.input, cmd = m.term.input.Update(msg)
	return m, cmd
}

// =============================================================================
// FOCUS
// =============================================================================

func (m *Model) setFocus(f Focus) {
	if f != FocusPicker && m.deps.Files.Project() == "" {
		f = FocusPicker
	}
	m.focus = f
	m.editor.area.Blur()
	m.assistant.input.Blur()
	m.term.input.Blur()

	switch f {
	case FocusEditor:
		m.editor.area.Focus()
	case FocusAssistant:
		m.assistant.input.Focus()
	case FocusTerminal:
		m.term.input.Focus()
	}
}

func (m *Model) cycleFocus(delta int) {
	idx := 0
	for i, f := range paneOrder {
		if f == m.focus {
			idx = i
		}
	}
	idx = (idx + delta + len(paneOrder)) % len(paneOrder)
	m.setFocus(paneOrder[idx])
}
