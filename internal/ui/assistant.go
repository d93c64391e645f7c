// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/diycursor/internal/model"
	"github.com/jeranaias/diycursor/internal/ui/styles"
)

// assistantPane shows the conversation and the question input.
type assistantPane struct {
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	renderer      *glamour.TermRenderer
	rendererWidth int
}

func newAssistantPane() assistantPane {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the current file"
	ti.CharLimit = 4000

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    spinner.Line.FPS,
	}

	return assistantPane{
		viewport: viewport.New(40, 10),
		input:    ti,
		spinner:  sp,
	}
}

// SetSize fits the viewport and input into the pane.
func (p *assistantPane) SetSize(width, height int) {
	if height < 3 {
		height = 3
	}
	p.viewport.Width = width
	p.viewport.Height = height - 2
	p.input.Width = width - 3
}

// Render rebuilds the conversation view.
func (p *assistantPane) Render(theme *styles.Theme, turns []model.Turn, busy bool) {
	var sb strings.Builder
	if len(turns) == 0 {
		sb.WriteString(theme.Muted.Render("Ask a question about your project. Load a model with :model <id>."))
	}
	for _, t := range turns {
		sb.WriteString(theme.RoleLabel.Render(t.Role.DisplayName()))
		sb.WriteString("\n")
		if t.Role == model.RoleAssistant {
			sb.WriteString(p.markdown(t.Content))
		} else {
			sb.WriteString(theme.UserTurn.Render(t.Content))
		}
		sb.WriteString("\n\n")
	}
	if busy {
		sb.WriteString(p.spinner.View() + " Thinking...")
	}
	p.viewport.SetContent(strings.TrimRight(sb.String(), "\n"))
	p.viewport.GotoBottom()
}

// markdown renders an answer, falling back to the raw text.
func (p *assistantPane) markdown(content string) string {
	width := p.viewport.Width
	if width < 20 {
		width = 20
	}
	if p.renderer == nil || p.rendererWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width-2),
		)
		if err != nil {
			return content
		}
		p.renderer, p.rendererWidth = r, width
	}
	out, err := p.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
