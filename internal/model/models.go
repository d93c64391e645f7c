// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "github.com/jeranaias/diycursor/internal/router"

// =============================================================================
// HOSTED MODEL CATALOG
// =============================================================================

// ModelInfo describes a model offered in the model picker.
type ModelInfo struct {
	// ID is the identifier sent to the provider.
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// Backend is resolved from ID by router.Classify.
	Backend router.Backend `json:"backend"`
}

// hostedModels is the picker list for the hosted providers, in display order.
// Local models come from the daemon catalog instead.
var hostedModels = []ModelInfo{
	{ID: "claude-3-opus-20240229", Name: "Claude 3 Opus"},
	{ID: "claude-3-sonnet-20240229", Name: "Claude 3 Sonnet"},
	{ID: "claude-3-haiku-20240307", Name: "Claude 3 Haiku"},
	{ID: "gpt-4o", Name: "GPT-4o"},
	{ID: "gpt-4-turbo", Name: "GPT-4 Turbo"},
	{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo"},
}

// HostedModels returns the suggested models for a hosted backend.
func HostedModels(backend router.Backend) []ModelInfo {
	var out []ModelInfo
	for _, m := range hostedModels {
		m.Backend = router.Classify(m.ID)
		if m.Backend == backend {
			out = append(out, m)
		}
	}
	return out
}

// LocalModels wraps daemon catalog names as picker entries.
func LocalModels(names []string) []ModelInfo {
	out := make([]ModelInfo, 0, len(names))
	for _, n := range names {
		out = append(out, ModelInfo{ID: n, Name: n, Backend: router.BackendLocal})
	}
	return out
}
