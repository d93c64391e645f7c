// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Completion is one candidate for the token being typed.
type Completion struct {
	Value       string
	Display     string
	Description string
	Score       int
}

// =============================================================================
// COMPLETER
// =============================================================================

// Completer completes command names and arguments. The callbacks supply
// dynamic values and may be nil.
type Completer struct {
	registry *Registry

	ModelsFn   func() []string
	FilesFn    func() []string
	ProjectsFn func() []string
}

// NewCompleter creates a completer for registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns candidates for the last token of input. Command names
// match by prefix, arguments fuzzily.
func (c *Completer) Complete(input string) []Completion {
	if !IsCommand(input) {
		return nil
	}
	input = strings.TrimLeft(input, " \t")
	parts := splitCommandLine(input)
	trailingSpace := strings.HasSuffix(input, " ")

	if len(parts) <= 1 && !trailingSpace {
		partial := ""
		if len(parts) == 1 {
			partial = parts[0]
		}
		return c.completeCommands(partial)
	}

	cmd := c.registry.Get(strings.ToLower(parts[0]))
	if cmd == nil {
		return nil
	}
	argIndex := len(parts) - 2
	partial := parts[len(parts)-1]
	if trailingSpace {
		argIndex++
		partial = ""
	}
	return c.completeArg(cmd, argIndex, partial)
}

func (c *Completer) completeCommands(partial string) []Completion {
	partial = strings.ToLower(partial)
	var out []Completion
	for _, cmd := range c.registry.All() {
		if strings.HasPrefix(cmd.Name, partial) {
			out = append(out, Completion{
				Value:       cmd.Name,
				Display:     cmd.Name,
				Description: cmd.Description,
				Score:       100 - (len(cmd.Name) - len(partial)),
			})
		}
		for _, alias := range cmd.Aliases {
			if partial != "" && strings.HasPrefix(alias, partial) {
				out = append(out, Completion{
					Value:       alias,
					Display:     alias + " -> " + cmd.Name,
					Description: cmd.Description,
					Score:       90 - (len(alias) - len(partial)),
				})
			}
		}
	}
	sortCompletions(out)
	return out
}

func (c *Completer) completeArg(cmd *Command, argIndex int, partial string) []Completion {
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}
	arg := cmd.Args[argIndex]

	var values []string
	switch arg.Type {
	case ArgTypeModel:
		values = call(c.ModelsFn)
	case ArgTypeFile:
		values = call(c.FilesFn)
	case ArgTypeProject:
		values = call(c.ProjectsFn)
	case ArgTypeEnum:
		values = arg.Values
	default:
		return nil
	}
	return completeFromList(values, partial)
}

func call(fn func() []string) []string {
	if fn == nil {
		return nil
	}
	return fn()
}

// completeFromList ranks values against partial with fuzzy matching. An
// empty partial returns every value in its original order.
func completeFromList(values []string, partial string) []Completion {
	if partial == "" {
		out := make([]Completion, len(values))
		for i, v := range values {
			out[i] = Completion{Value: v, Display: v}
		}
		return out
	}

	matches := fuzzy.Find(partial, values)
	out := make([]Completion, len(matches))
	for i, m := range matches {
		out[i] = Completion{Value: m.Str, Display: m.Str, Score: m.Score}
	}
	return out
}

func sortCompletions(completions []Completion) {
	sort.SliceStable(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}

// Apply replaces the token being completed in input with completion.
func Apply(input string, completion Completion) string {
	if strings.HasSuffix(input, " ") {
		return input + quoteIfNeeded(completion.Value) + " "
	}
	idx := strings.LastIndexAny(input, " \t")
	return input[:idx+1] + quoteIfNeeded(completion.Value) + " "
}

func quoteIfNeeded(v string) string {
	if strings.ContainsAny(v, " \t") {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return v
}

// =============================================================================
// COMPLETION STATE
// =============================================================================

// CompletionState cycles through the candidates of one completion request.
type CompletionState struct {
	Input       string
	Completions []Completion
	Selected    int
}

// Update replaces the candidates for input.
func (cs *CompletionState) Update(input string, completions []Completion) {
	cs.Input = input
	cs.Completions = completions
	cs.Selected = 0
}

// Next advances to the next candidate, wrapping around.
func (cs *CompletionState) Next() {
	if len(cs.Completions) > 0 {
		cs.Selected = (cs.Selected + 1) % len(cs.Completions)
	}
}

// Current returns the selected candidate.
func (cs *CompletionState) Current() (Completion, bool) {
	if cs.Selected < 0 || cs.Selected >= len(cs.Completions) {
		return Completion{}, false
	}
	return cs.Completions[cs.Selected], true
}

// Clear drops the candidates.
func (cs *CompletionState) Clear() {
	cs.Input = ""
	cs.Completions = nil
	cs.Selected = 0
}
