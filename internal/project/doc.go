// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package project creates new projects in the workspace.
//
// Templates come from an embedded YAML catalog. Each runs a shell command in
// the fresh project directory, may write a few starter files, and may run
// follow-up commands such as a package install. Cloning shells out to git.
//
// # Usage
//
//	sc := project.NewScaffolder(store, nil, nil, logger)
//	err := sc.CreateFromTemplate(ctx, "site", "nextjs")
//	err = sc.Clone(ctx, "lib", "https://github.com/user/lib.git", "main")
package project
