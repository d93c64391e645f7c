// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant turns user questions into model prompts and keeps the
// resulting conversation.
//
// The Controller prefixes each question with the active project and, when a
// file is selected, its content. Model failures never escape Submit; they
// become assistant turns so the conversation always shows what happened.
package assistant
