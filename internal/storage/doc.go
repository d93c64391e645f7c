// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local preference store.
//
// Preferences are string key/value pairs kept in a single SQLite table
// (pure Go driver, no cgo). Known keys:
//
//   - last_model: JSON {"type":..., "name":...} of the loaded model
//   - model_api_keys: JSON {"anthropic":..., "openai":...}
//   - lastProject: name of the most recently opened project
//
// # Usage
//
//	prefs, err := storage.OpenPrefs(filepath.Join(dir, "state.db"))
//	defer prefs.Close()
//	err = prefs.Set(storage.KeyLastProject, "demo")
//	name, ok, err := prefs.Get(storage.KeyLastProject)
//
// # Storage Location
//
// The database lives at ~/.diycursor/state.db unless configured otherwise.
package storage
