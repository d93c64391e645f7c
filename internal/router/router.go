// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import "strings"

// Naming families of the hosted providers.
const (
	AnthropicPrefix = "claude"
	OpenAIPrefix    = "gpt"
)

// Classify resolves a model identifier to its backend by naming convention:
// "claude..." routes to Anthropic, "gpt..." to OpenAI, anything else to the
// local daemon. It runs once when a model is loaded; the result is carried
// in the ModelConfig afterwards.
func Classify(identifier string) Backend {
	id := strings.TrimSpace(identifier)
	switch {
	case strings.HasPrefix(id, AnthropicPrefix):
		return BackendAnthropic
	case strings.HasPrefix(id, OpenAIPrefix):
		return BackendOpenAI
	default:
		return BackendLocal
	}
}

// Resolve builds the ModelConfig for an identifier.
func Resolve(identifier string) ModelConfig {
	id := strings.TrimSpace(identifier)
	return ModelConfig{Backend: Classify(id), Model: id}
}
