// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the process-local session state of the workspace.
//
// # Key Types
//
//   - ModelManager: current model, provider credentials and backend dispatch
//   - FileManager: active project, cached file listing and current file
//   - Autosaver: debounced editor writes through a single pending slot
//
// Each type guards its state with a mutex that is never held across network
// or storage calls, and runs its callbacks outside the lock.
//
// # Usage
//
//	models := session.NewModelManager(session.ModelDeps{
//	    Local:     ollama.NewClient(),
//	    Anthropic: cloud.NewAnthropicClient(),
//	    OpenAI:    cloud.NewOpenAIClient(),
//	    Prefs:     prefs,
//	})
//	if _, err := models.LoadModel(ctx, "llama3.2"); err != nil {
//	    return err
//	}
//	text, err := models.Generate(ctx, prompt)
package session
