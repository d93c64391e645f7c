// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles of the workspace panes.
type Theme struct {
	Pane        lipgloss.Style
	FocusedPane lipgloss.Style
	PaneTitle   lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	ListDir      lipgloss.Style
	ListMatch    lipgloss.Style

	UserTurn      lipgloss.Style
	AssistantTurn lipgloss.Style
	RoleLabel     lipgloss.Style

	StatusBar   lipgloss.Style
	StatusError lipgloss.Style
	StatusInfo  lipgloss.Style
	Unsaved     lipgloss.Style
	Muted       lipgloss.Style

	// Backend badges
	LocalBadge  lipgloss.Style
	HostedBadge lipgloss.Style

	Width  int
	Height int
}

// NewTheme creates the default theme.
func NewTheme() *Theme {
	t := &Theme{}

	border := lipgloss.RoundedBorder()
	t.Pane = lipgloss.NewStyle().
		Border(border).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.FocusedPane = t.Pane.Copy().BorderForeground(FocusRing)
	t.PaneTitle = lipgloss.NewStyle().Bold(true).Foreground(Cyan)

	t.ListItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.ListSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg).
		Bold(true)
	t.ListDir = lipgloss.NewStyle().Foreground(TextSecondary)
	t.ListMatch = lipgloss.NewStyle().Foreground(Amber).Bold(true)

	t.UserTurn = lipgloss.NewStyle().Foreground(TextPrimary)
	t.AssistantTurn = lipgloss.NewStyle().Foreground(TextPrimary)
	t.RoleLabel = lipgloss.NewStyle().Bold(true).Foreground(Purple)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.StatusError = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.StatusInfo = lipgloss.NewStyle().Foreground(Emerald)
	t.Unsaved = lipgloss.NewStyle().Foreground(Amber)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)

	t.LocalBadge = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.HostedBadge = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	return t
}

// SetSize records the terminal size.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// LayoutMode selects how many panes fit side by side.
type LayoutMode int

const (
	// LayoutStacked shows one pane at a time.
	LayoutStacked LayoutMode = iota
	// LayoutSplit shows files and editor with the assistant below.
	LayoutSplit
	// LayoutWide shows files, editor and assistant side by side.
	LayoutWide
)

// GetLayoutMode picks a layout for the recorded width.
func (t *Theme) GetLayoutMode() LayoutMode {
	switch {
	case t.Width >= 140:
		return LayoutWide
	case t.Width >= 80:
		return LayoutSplit
	default:
		return LayoutStacked
	}
}

// PaneStyle returns the border style for a pane.
func (t *Theme) PaneStyle(focused bool) lipgloss.Style {
	if focused {
		return t.FocusedPane
	}
	return t.Pane
}
