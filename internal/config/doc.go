// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and saves the diycursor configuration.
//
// # Configuration Precedence
//
//   - Environment variables (DIYCURSOR_*)
//   - ~/.diycursor/config.toml
//   - ~/.diycursor/config.json
//   - Built-in defaults
//
// DIYCURSOR_HOME relocates ~/.diycursor, including the default paths of the
// projects directory, the state database and the log file.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil && cfg == nil {
//	    return err
//	}
//	delay := cfg.Editor.AutosaveDelay()
package config
