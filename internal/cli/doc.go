// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the diycursor command line.
//
// Without a subcommand the workspace TUI starts. The subcommands drive the
// same session layer non-interactively:
//
//	diycursor ask [--project P] [--file F] [--model M] <question>
//	diycursor models list | load <id> | key <provider> <secret>
//	diycursor project list | new <name> [--template T] | clone <url> <name> | templates
//	diycursor files ls | cat <path> | new <path> | rm <path>   [--project P]
//	diycursor term
//	diycursor config show | path | init | get <key> | set <key> <value>
//
// Global flags:
//
//	--config FILE   Load configuration from FILE
//	--debug         Log at debug level
//
// Output goes to the command's writer so commands can be exercised with a
// buffer in tests. Styling is applied only when stdout is a terminal.
package cli
