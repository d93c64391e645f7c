// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the conversation data structures and the model
// picker catalog.
//
// # Key Types
//
//   - Turn: one immutable user or assistant entry with an ID and timestamp
//   - Conversation: append-only ordered list of turns
//   - ModelInfo: a selectable model with its resolved backend
//
// # Usage
//
//	conv := model.NewConversation()
//	conv.Append(model.NewUserTurn("explain this"))
//	conv.Append(model.NewAssistantTurn("It prints hello."))
//	last, _ := conv.LastAssistant()
package model
