// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the bubbletea workspace: a project picker, a file list with
// a fuzzy filter, a text editor with debounced autosave, the assistant panel,
// the simulated terminal and a ":" command line.
//
// The model only drives the session managers; all state that outlives a
// frame lives in session.FileManager, session.ModelManager and
// assistant.Controller.
package ui
