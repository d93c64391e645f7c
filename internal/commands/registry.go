// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"

	tea "github.com/charmbracelet/bubbletea"
)

// Prefix starts every command line.
const Prefix = ":"

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command is a colon command.
type Command struct {
	// Name is the primary name including the prefix, e.g. ":model".
	Name string

	Aliases     []string
	Description string
	Usage       string
	Args        []ArgDef
	Category    string

	Handler func(ctx *Context, args []string) tea.Cmd
}

// ArgDef describes one positional argument.
type ArgDef struct {
	Name        string
	Required    bool
	Type        ArgType
	Description string
	Values      []string // for ArgTypeEnum
}

// ArgType selects the completion source for an argument.
type ArgType int

const (
	ArgTypeString  ArgType = iota // free-form
	ArgTypeModel                  // local and hosted model identifiers
	ArgTypeFile                   // files of the open project
	ArgTypeProject                // project names
	ArgTypeEnum                   // one of Values
)

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds the registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a registry with the built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command, replacing one with the same name.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get returns a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	return r.aliases[name]
}

// All returns the commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// ByCategory groups the commands by category; uncategorized ones are
// "General".
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        ":help",
		Aliases:     []string{":h", ":?"},
		Description: "Show available commands",
		Category:    "General",
		Handler:     HandleHelp,
	})
	r.Register(&Command{
		Name:        ":quit",
		Aliases:     []string{":q"},
		Description: "Save pending edits and exit",
		Category:    "General",
		Handler:     HandleQuit,
	})

	r.Register(&Command{
		Name:        ":model",
		Aliases:     []string{":m"},
		Description: "Load a model or show the current one",
		Usage:       ":model [id]",
		Args: []ArgDef{
			{Name: "id", Type: ArgTypeModel, Description: "model identifier, e.g. llama3.2 or gpt-4o"},
		},
		Category: "Model",
		Handler:  HandleModel,
	})
	r.Register(&Command{
		Name:        ":models",
		Description: "List local and hosted models",
		Category:    "Model",
		Handler:     HandleModels,
	})
	r.Register(&Command{
		Name:        ":key",
		Description: "Set the API key of a hosted provider",
		Usage:       ":key <anthropic|openai> <secret>",
		Args: []ArgDef{
			{Name: "provider", Required: true, Type: ArgTypeEnum, Values: []string{"anthropic", "openai"}, Description: "hosted provider"},
			{Name: "secret", Required: true, Type: ArgTypeString, Description: "API key; empty quotes clear it"},
		},
		Category: "Model",
		Handler:  HandleKey,
	})

	r.Register(&Command{
		Name:        ":open",
		Aliases:     []string{":o"},
		Description: "Open a project",
		Usage:       ":open <project>",
		Args: []ArgDef{
			{Name: "project", Required: true, Type: ArgTypeProject, Description: "project name"},
		},
		Category: "Files",
		Handler:  HandleOpen,
	})
	r.Register(&Command{
		Name:        ":new",
		Description: "Create a file in the open project",
		Usage:       ":new <path>",
		Args: []ArgDef{
			{Name: "path", Required: true, Type: ArgTypeString, Description: "path relative to the project"},
		},
		Category: "Files",
		Handler:  HandleNew,
	})
	r.Register(&Command{
		Name:        ":rm",
		Description: "Delete a file (default: the current file)",
		Usage:       ":rm [path]",
		Args: []ArgDef{
			{Name: "path", Type: ArgTypeFile, Description: "file to delete"},
		},
		Category: "Files",
		Handler:  HandleRemove,
	})
	r.Register(&Command{
		Name:        ":refresh",
		Aliases:     []string{":r"},
		Description: "Re-read the file list from disk",
		Category:    "Files",
		Handler:     HandleRefresh,
	})

	r.Register(&Command{
		Name:        ":clear",
		Description: "Clear the assistant conversation",
		Category:    "Assistant",
		Handler:     HandleClear,
	})
	r.Register(&Command{
		Name:        ":copy",
		Description: "Copy the last answer to the clipboard",
		Category:    "Assistant",
		Handler:     HandleCopy,
	})
}
