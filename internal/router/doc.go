// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router resolves model identifiers to inference backends.
//
// # Key Types
//
//   - Backend: closed set of inference targets (Local, Anthropic, OpenAI)
//   - ModelConfig: backend plus model identifier, persisted as {"type","name"}
//
// # Usage
//
//	cfg := router.Resolve("claude-3-5-sonnet-latest")
//	switch cfg.Backend {
//	case router.BackendLocal:
//	    // Ollama
//	case router.BackendAnthropic:
//	    // needs an Anthropic key
//	}
package router
