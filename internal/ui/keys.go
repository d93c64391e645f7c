// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the workspace key bindings.
type KeyMap struct {
	Quit      key.Binding
	NextPane  key.Binding
	PrevPane  key.Binding
	Back      key.Binding
	Command   key.Binding
	Projects  key.Binding
	Terminal  key.Binding
	Save      key.Binding
	Filter    key.Binding
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding
	NewProj   key.Binding
	Help      key.Binding
	Confirm   key.Binding
	Complete  key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	CopyReply key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-q", "save & quit"),
		),
		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next pane"),
		),
		PrevPane: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "previous pane"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "back to files"),
		),
		Command: key.NewBinding(
			key.WithKeys(":", "ctrl+k"),
			key.WithHelp(":/C-k", "command"),
		),
		Projects: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("C-p", "projects"),
		),
		Terminal: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "terminal"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "save now"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter files"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "open"),
		),
		NewProj: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new project"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "complete"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		CopyReply: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy answer"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPane, k.Command, k.Projects, k.Terminal, k.Quit}
}

// FullHelp returns all bindings grouped by purpose.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPane, k.PrevPane, k.Back, k.Terminal},
		{k.Up, k.Down, k.Open, k.Filter},
		{k.Command, k.Projects, k.NewProj, k.Save},
		{k.CopyReply, k.PageUp, k.PageDown, k.Quit},
	}
}
