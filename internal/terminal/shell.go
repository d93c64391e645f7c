// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package terminal implements the workspace's simulated terminal. It runs no
// processes; a fixed command table produces canned output.
package terminal

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Version is the terminal version shown in the banner.
const Version = "DIY Cursor Terminal v0.1.0"

// Prompt prefixes echoed input lines.
const Prompt = "$ "

// banner is the initial scrollback.
var banner = []string{Version, "Type 'help' for available commands", ""}

// Command is one entry of the command table.
type Command struct {
	Name        string
	Description string
	Run         func(args string) []string
}

// =============================================================================
// SHELL
// =============================================================================

// Shell holds the scrollback and the command table.
type Shell struct {
	mu       sync.Mutex
	history  []string
	commands map[string]Command
}

// NewShell creates a shell showing the banner.
func NewShell() *Shell {
	s := &Shell{commands: make(map[string]Command)}
	s.history = append(s.history, banner...)
	s.registerBuiltins()
	return s
}

func (s *Shell) registerBuiltins() {
	s.Register(Command{Name: "help", Description: "Display this help message", Run: s.help})
	s.Register(Command{Name: "clear", Description: "Clear the terminal"})
	s.Register(Command{Name: "version", Description: "Show terminal version", Run: func(string) []string {
		return []string{Version}
	}})
	s.Register(Command{Name: "ls", Description: "List files (simulated)", Run: func(string) []string {
		return []string{"package.json", "node_modules/", "src/", "public/"}
	}})
	s.Register(Command{Name: "echo", Description: "Echo text back to terminal", Run: func(args string) []string {
		return []string{args}
	}})
}

// Register adds or replaces a command.
func (s *Shell) Register(cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands[cmd.Name] = cmd
}

// Execute runs one input line and returns the lines it appended to the
// scrollback. Blank input does nothing. Input is trimmed, NFKC-folded and
// lower-cased before lookup, so fullwidth forms match; "clear" empties the
// scrollback.
func (s *Shell) Execute(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	line := strings.ToLower(norm.NFKC.String(strings.TrimSpace(input)))
	name, args, _ := strings.Cut(line, " ")

	s.mu.Lock()
	cmd, ok := s.commands[name]
	s.mu.Unlock()

	if name == "clear" {
		s.Clear()
		return nil
	}

	var out []string
	switch {
	case ok && cmd.Run != nil && (name != "echo" || args != ""):
		out = cmd.Run(args)
	default:
		out = []string{"Command not found: " + line}
	}

	appended := append([]string{Prompt + input}, out...)
	appended = append(appended, "")

	s.mu.Lock()
	s.history = append(s.history, appended...)
	s.mu.Unlock()
	return appended
}

// History returns a copy of the scrollback.
func (s *Shell) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// Clear empties the scrollback.
func (s *Shell) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

func (s *Shell) help(string) []string {
	s.mu.Lock()
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	s.mu.Unlock()
	sort.Slice(names, func(i, j int) bool { return helpOrder(names[i]) < helpOrder(names[j]) })

	lines := []string{"Available commands:"}
	for _, name := range names {
		s.mu.Lock()
		desc := s.commands[name].Description
		s.mu.Unlock()
		lines = append(lines, "  "+padName(name)+" - "+desc)
	}
	return lines
}

// helpOrder keeps the builtins in their documented order, extras after.
func helpOrder(name string) string {
	for i, n := range []string{"help", "clear", "version", "ls", "echo"} {
		if n == name {
			return string(rune('0' + i))
		}
	}
	return "9" + name
}

func padName(name string) string {
	const width = 8
	if len(name) >= width {
		return name
	}
	return name + strings.Repeat(" ", width-len(name))
}
