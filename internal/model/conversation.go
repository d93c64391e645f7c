// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// MaxTurns is the maximum number of turns kept in history.
// When exceeded, the oldest turns are pruned.
const MaxTurns = 1000

// Conversation is an append-only, ordered list of turns.
// It is not safe for concurrent use; callers serialize access.
type Conversation struct {
	turns []Turn
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{turns: make([]Turn, 0)}
}

// Append adds a turn at the end.
func (c *Conversation) Append(t Turn) {
	c.turns = append(c.turns, t)
	if len(c.turns) > MaxTurns {
		c.pruneOldTurns()
	}
}

// Turns returns a copy of the history in append order.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// IsEmpty returns true if there are no turns.
func (c *Conversation) IsEmpty() bool {
	return len(c.turns) == 0
}

// Clear removes every turn.
func (c *Conversation) Clear() {
	c.turns = make([]Turn, 0)
}

// LastAssistant returns the most recent assistant turn.
func (c *Conversation) LastAssistant() (Turn, bool) {
	for i := len(c.turns) - 1; i >= 0; i-- {
		if c.turns[i].Role == RoleAssistant {
			return c.turns[i], true
		}
	}
	return Turn{}, false
}

func (c *Conversation) pruneOldTurns() {
	excess := len(c.turns) - MaxTurns
	kept := make([]Turn, MaxTurns)
	copy(kept, c.turns[excess:])
	c.turns = kept
}
