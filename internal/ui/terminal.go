// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/jeranaias/diycursor/internal/terminal"
)

// terminalPane fronts the simulated shell.
type terminalPane struct {
	shell    *terminal.Shell
	viewport viewport.Model
	input    textinput.Model
}

func newTerminalPane(shell *terminal.Shell) terminalPane {
	ti := textinput.New()
	ti.Prompt = terminal.Prompt

	p := terminalPane{
		shell:    shell,
		viewport: viewport.New(40, 8),
		input:    ti,
	}
	p.sync()
	return p
}

// Run executes the input line and clears it.
func (p *terminalPane) Run() {
	line := p.input.Value()
	p.input.Reset()
	p.shell.Execute(line)
	p.sync()
}

func (p *terminalPane) sync() {
	p.viewport.SetContent(strings.Join(p.shell.History(), "\n"))
	p.viewport.GotoBottom()
}

// SetSize fits the pane.
func (p *terminalPane) SetSize(width, height int) {
	if height < 3 {
		height = 3
	}
	p.viewport.Width = width
	p.viewport.Height = height - 1
	p.input.Width = width - 3
	p.sync()
}
