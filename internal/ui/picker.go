// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/jeranaias/diycursor/internal/project"
	"github.com/jeranaias/diycursor/internal/ui/styles"
	"github.com/jeranaias/diycursor/internal/util"
)

// pickerModel lists projects and takes the name of a new one.
type pickerModel struct {
	projects  []string
	cursor    int
	templates []project.TemplateInfo

	input    textinput.Model
	creating bool
	busy     bool
}

func newPicker(templates []project.TemplateInfo) pickerModel {
	ti := textinput.New()
	ti.Prompt = "New project: "
	ti.Placeholder = "name [template]"
	ti.CharLimit = 128
	return pickerModel{templates: templates, input: ti}
}

// SetProjects replaces the list and moves the cursor to selected if present.
func (p *pickerModel) SetProjects(names []string, selected string) {
	p.projects = names
	p.cursor = 0
	for i, n := range names {
		if n == selected {
			p.cursor = i
		}
	}
}

// Selected returns the project under the cursor, or "".
func (p pickerModel) Selected() string {
	if p.cursor < 0 || p.cursor >= len(p.projects) {
		return ""
	}
	return p.projects[p.cursor]
}

// Move shifts the cursor by delta.
func (p *pickerModel) Move(delta int) {
	p.cursor += delta
	if p.cursor >= len(p.projects) {
		p.cursor = len(p.projects) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// StartCreate focuses the new-project input.
func (p *pickerModel) StartCreate() {
	p.creating = true
	p.input.Reset()
	p.input.Focus()
}

// StopCreate returns the typed input and leaves create mode.
func (p *pickerModel) StopCreate() string {
	value := p.input.Value()
	p.creating = false
	p.input.Reset()
	p.input.Blur()
	return value
}

// View renders the picker.
func (p pickerModel) View(theme *styles.Theme, width, height int) string {
	var lines []string
	lines = append(lines, theme.PaneTitle.Render("Projects"), "")

	if len(p.projects) == 0 {
		lines = append(lines, theme.Muted.Render("No projects yet. Press n to create one."))
	}
	rows := make([]string, 0, len(p.projects))
	for i, name := range p.projects {
		label := util.TruncateWidth(name, width-2)
		if i == p.cursor && !p.creating {
			rows = append(rows, theme.ListSelected.Width(width).Render("> "+label))
		} else {
			rows = append(rows, theme.ListItem.Render("  "+label))
		}
	}
	lines = append(lines, window(rows, p.cursor, height-8)...)

	lines = append(lines, "")
	switch {
	case p.busy:
		lines = append(lines, theme.Muted.Render("Creating project..."))
	case p.creating:
		lines = append(lines, p.input.View())
		ids := make([]string, len(p.templates))
		for i, t := range p.templates {
			ids[i] = t.ID
		}
		lines = append(lines, theme.Muted.Render(util.TruncateWidth("templates: "+strings.Join(ids, ", "), width)))
	default:
		lines = append(lines, theme.Muted.Render("Enter open  n new  C-q quit"))
	}
	return strings.Join(lines, "\n")
}
