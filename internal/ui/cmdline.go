// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/jeranaias/diycursor/internal/commands"
)

// cmdLine is the ":" prompt with tab completion.
type cmdLine struct {
	input     textinput.Model
	completer *commands.Completer
	state     commands.CompletionState
	active    bool
}

func newCmdLine(completer *commands.Completer) cmdLine {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 1024
	return cmdLine{input: ti, completer: completer}
}

// Open activates the prompt prefilled with ":".
func (c *cmdLine) Open() {
	c.active = true
	c.state.Clear()
	c.input.SetValue(commands.Prefix)
	c.input.CursorEnd()
	c.input.Focus()
}

// Close deactivates the prompt and returns what was typed.
func (c *cmdLine) Close() string {
	value := c.input.Value()
	c.active = false
	c.state.Clear()
	c.input.Reset()
	c.input.Blur()
	return strings.TrimSpace(value)
}

// Complete cycles through candidates for the current input. The first press
// computes the candidates; later presses move to the next one.
func (c *cmdLine) Complete() {
	if _, ok := c.state.Current(); ok {
		c.state.Next()
	} else {
		c.state.Update(c.input.Value(), c.completer.Complete(c.input.Value()))
	}
	if comp, ok := c.state.Current(); ok {
		c.input.SetValue(commands.Apply(c.state.Input, comp))
		c.input.CursorEnd()
	}
}

// Edited drops stale completions after a keystroke.
func (c *cmdLine) Edited() {
	c.state.Clear()
}
