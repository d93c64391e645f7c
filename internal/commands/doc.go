// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the colon command line of the TUI.
//
// # Key Types
//
//   - Registry: the available commands and their handlers
//   - ParseResult: a parsed command line with name and arguments
//   - Completer: tab completion for command names and arguments
//   - Context: the session state handlers act on
//
// Handlers never touch the UI. They return a tea.Cmd whose message tells
// the UI what happened.
//
// # Usage
//
//	reg := commands.NewRegistry()
//	if cmd := reg.Execute(hctx, ":model llama3.2"); cmd != nil {
//	    return m, cmd
//	}
package commands
