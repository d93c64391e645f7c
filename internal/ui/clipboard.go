// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/diycursor/internal/commands"
	"github.com/jeranaias/diycursor/internal/errs"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// CopyCmd copies content to the system clipboard.
func CopyCmd(content string) tea.Cmd {
	return func() tea.Msg {
		if clipboard.Unsupported {
			return commands.ErrorMsg{Err: errs.New(errs.KindInvalidInput, "clipboard is not available on this system")}
		}
		if err := writeClipboard(content); err != nil {
			return commands.ErrorMsg{Err: errs.Wrap(errs.KindInvalidInput, "failed to copy to clipboard", err)}
		}
		return commands.SystemMessageMsg{Content: "Copied answer to clipboard"}
	}
}
