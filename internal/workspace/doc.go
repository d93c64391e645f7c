// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package workspace stores projects as directories under one projects root.
//
// Every project is a direct child directory of the root; files are addressed
// by forward-slash paths relative to their project. Dependency and version
// control directories (node_modules, .git) are never listed.
//
// # Key Types
//
//   - Store: list/read/write/create/delete primitives with classified errors
//   - Watcher: fsnotify-based change notification for one project
//
// # Usage
//
//	store := workspace.NewStore(cfg.Workspace.ProjectsDir)
//	paths, err := store.List(ctx, "demo")
//	err = store.Create("demo", "a.txt", "hi") // errs.KindAlreadyExists if present
package workspace
