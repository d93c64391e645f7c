// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/diycursor/internal/ui/styles"
	"github.com/jeranaias/diycursor/internal/util"
)

// =============================================================================
// LAYOUT
// =============================================================================

// paneBox is the outer size of one bordered pane.
type paneBox struct {
	w, h int
}

// inner returns the content size: border and padding take four columns,
// border and title take three rows.
func (b paneBox) inner() (int, int) {
	return max(b.w-4, 1), max(b.h-3, 1)
}

type layout struct {
	mode styles.LayoutMode

	files, editor, assistant, terminal paneBox

	editorW, editorH       int
	assistantW, assistantH int
	terminalW, terminalH   int
}

func (m Model) layout() layout {
	body := max(m.height-2, 6)
	w := max(m.width, 20)
	l := layout{mode: m.theme.GetLayoutMode()}

	switch l.mode {
	case styles.LayoutWide:
		termH := min(10, body/3)
		top := body - termH
		assistW := w * 2 / 5
		l.files = paneBox{30, top}
		l.assistant = paneBox{assistW, top}
		l.editor = paneBox{w - 30 - assistW, top}
		l.terminal = paneBox{w, termH}
	case styles.LayoutSplit:
		bottom := max(body*2/5, 8)
		top := body - bottom
		l.files = paneBox{26, top}
		l.editor = paneBox{w - 26, top}
		l.assistant = paneBox{w / 2, bottom}
		l.terminal = paneBox{w - w/2, bottom}
	default:
		full := paneBox{w, body}
		l.files, l.editor, l.assistant, l.terminal = full, full, full, full
	}

	l.editorW, l.editorH = l.editor.inner()
	l.assistantW, l.assistantH = l.assistant.inner()
	l.terminalW, l.terminalH = l.terminal.inner()
	return l
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the workspace.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	var body string
	l := m.layout()
	switch {
	case m.focus == FocusPicker:
		full := paneBox{max(m.width, 20), max(m.height-2, 6)}
		w, h := full.inner()
		body = m.box(full, "DIY Cursor", m.picker.View(m.theme, w, h), true)
	case m.helpText != "":
		full := paneBox{max(m.width, 20), max(m.height-2, 6)}
		body = m.box(full, "Help (Esc to close)", m.helpText, true)
	default:
		body = m.panes(l)
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusView(), m.footerView())
}

func (m Model) panes(l layout) string {
	filesPane := m.filesView(l.files)
	editorPane := m.editorView(l.editor)
	assistantPane := m.assistantView(l.assistant)
	terminalPane := m.box(l.terminal, "Terminal", m.term.viewport.View()+"\n"+m.term.input.View(), m.focus == FocusTerminal)

	switch l.mode {
	case styles.LayoutWide:
		top := lipgloss.JoinHorizontal(lipgloss.Top, filesPane, editorPane, assistantPane)
		return lipgloss.JoinVertical(lipgloss.Left, top, terminalPane)
	case styles.LayoutSplit:
		top := lipgloss.JoinHorizontal(lipgloss.Top, filesPane, editorPane)
		bottom := lipgloss.JoinHorizontal(lipgloss.Top, assistantPane, terminalPane)
		return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
	}

	switch m.focus {
	case FocusEditor:
		return editorPane
	case FocusAssistant:
		return assistantPane
	case FocusTerminal:
		return terminalPane
	}
	return filesPane
}

func (m Model) filesView(b paneBox) string {
	w, h := b.inner()
	title := m.deps.Files.Project()
	if m.changedOnDisk {
		title += " " + m.theme.Unsaved.Render("(changed)")
	}
	return m.box(b, title, m.files.View(m.theme, w, h, m.editor.path), m.focus == FocusFiles)
}

func (m Model) editorView(b paneBox) string {
	title := "Editor"
	if m.editor.path != "" {
		title = m.editor.path
		if m.editor.dirty {
			title += " " + m.theme.Unsaved.Render("[+]")
		}
	}
	return m.box(b, title, m.editor.area.View(), m.focus == FocusEditor)
}

func (m Model) assistantView(b paneBox) string {
	title := "Assistant"
	if cfg, ok := m.deps.Models.Current(); ok {
		badge := m.theme.LocalBadge
		if cfg.Backend.IsHosted() {
			badge = m.theme.HostedBadge
		}
		title += " " + badge.Render(cfg.Model)
	}
	content := m.assistant.viewport.View() + "\n\n" + m.assistant.input.View()
	return m.box(b, title, content, m.focus == FocusAssistant)
}

// box draws a bordered pane of exactly b's size.
func (m Model) box(b paneBox, title, content string, focused bool) string {
	w, h := b.inner()
	title = m.theme.PaneTitle.Render(util.TruncateWidth(title, w))
	return m.theme.PaneStyle(focused).
		Width(b.w - 2).
		Height(b.h - 2).
		Render(title + "\n" + clip(content, h))
}

func (m Model) statusView() string {
	status := util.TruncateWidth(util.FirstLine(m.status), max(m.width-2, 1))
	switch {
	case m.statusErr:
		status = m.theme.StatusError.Render(status)
	case status != "":
		status = m.theme.StatusInfo.Render(status)
	}
	return m.theme.StatusBar.Width(max(m.width, 1)).Render(status)
}

func (m Model) footerView() string {
	if m.cmdline.active {
		line := m.cmdline.input.View()
		if comp, ok := m.cmdline.state.Current(); ok && comp.Description != "" {
			line += "  " + m.theme.Muted.Render(comp.Description)
		}
		return line
	}
	if m.showFullHelp {
		return m.help.FullHelpView(m.keys.FullHelp())
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

// clip keeps the first n lines of s.
func clip(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
