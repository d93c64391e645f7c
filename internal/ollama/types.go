// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"strconv"
	"strings"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// GenerateRequest is the request body for /api/generate endpoint.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// PullRequest is the request body for /api/pull endpoint.
// Stream is always false so the daemon answers once the pull has finished.
type PullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// GenerateResponse is the response from /api/generate endpoint. Only the
// text and the generation stats that get logged are decoded.
type GenerateResponse struct {
	Response     string `json:"response"`
	EvalCount    int    `json:"eval_count,omitempty"`    // number of tokens generated
	EvalDuration int64  `json:"eval_duration,omitempty"` // nanoseconds
}

// PullResponse is the final status object from /api/pull.
type PullResponse struct {
	Status string `json:"status"`
}

// =============================================================================
// MODEL TYPES
// =============================================================================

// ModelInfo is one installed model of the /api/tags catalog.
type ModelInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"` // bytes on disk
}

// ListModelsResponse is the response from /api/tags endpoint.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// Names returns the model names in catalog order.
func (r *ListModelsResponse) Names() []string {
	names := make([]string, 0, len(r.Models))
	for _, m := range r.Models {
		names = append(names, m.Name)
	}
	return names
}

// =============================================================================
// ERROR TYPES
// =============================================================================

// OllamaError represents an error body from the Ollama API.
type OllamaError struct {
	Error string `json:"error"`
}

// =============================================================================
// HELPER METHODS
// =============================================================================

// TokensPerSecond calculates the generation speed from a response. It is
// logged with every local generation.
func (r *GenerateResponse) TokensPerSecond() float64 {
	if r.EvalDuration == 0 {
		return 0
	}
	seconds := float64(r.EvalDuration) / 1e9
	return float64(r.EvalCount) / seconds
}

// FormatSize formats the model size in human-readable form, as shown by
// "diycursor models list".
func (m *ModelInfo) FormatSize() string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case m.Size >= GB:
		return formatFloat(float64(m.Size)/GB) + " GB"
	case m.Size >= MB:
		return formatFloat(float64(m.Size)/MB) + " MB"
	case m.Size >= KB:
		return formatFloat(float64(m.Size)/KB) + " KB"
	default:
		return formatFloat(float64(m.Size)) + " B"
	}
}

func formatFloat(f float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(f, 'f', 1, 64), ".0")
}
