// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ============================================================================
// BACKEND TYPE
// ============================================================================

// Backend identifies which inference target answers a prompt.
// The set is closed: Local, Anthropic and OpenAI.
type Backend int

const (
	// BackendLocal is the local Ollama daemon.
	BackendLocal Backend = iota
	// BackendAnthropic is the hosted Anthropic messages API.
	BackendAnthropic
	// BackendOpenAI is the hosted OpenAI chat completions API.
	BackendOpenAI
)

// Backends lists every backend in display order.
var Backends = []Backend{BackendLocal, BackendAnthropic, BackendOpenAI}

// String returns the persisted name of the backend.
func (b Backend) String() string {
	switch b {
	case BackendLocal:
		return "local"
	case BackendAnthropic:
		return "anthropic"
	case BackendOpenAI:
		return "openai"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// DisplayName returns a human-readable name for the backend.
func (b Backend) DisplayName() string {
	switch b {
	case BackendLocal:
		return "Ollama"
	case BackendAnthropic:
		return "Anthropic"
	case BackendOpenAI:
		return "OpenAI"
	default:
		return b.String()
	}
}

// IsHosted returns true if the backend needs a credential.
func (b Backend) IsHosted() bool {
	return b == BackendAnthropic || b == BackendOpenAI
}

// ParseBackend parses a backend name as produced by String.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local", "ollama":
		return BackendLocal, nil
	case "anthropic", "claude":
		return BackendAnthropic, nil
	case "openai", "gpt":
		return BackendOpenAI, nil
	default:
		return BackendLocal, fmt.Errorf("unknown backend %q (want local, anthropic or openai)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b Backend) MarshalText() ([]byte, error) {
	switch b {
	case BackendLocal, BackendAnthropic, BackendOpenAI:
		return []byte(b.String()), nil
	default:
		return nil, fmt.Errorf("invalid backend %d", int(b))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Backend) UnmarshalText(text []byte) error {
	parsed, err := ParseBackend(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ============================================================================
// MODEL CONFIG
// ============================================================================

// ModelConfig identifies the backend and model serving requests.
// Values are never mutated; selecting another model produces a new one.
type ModelConfig struct {
	Backend Backend `json:"type"`
	Model   string  `json:"name"`
}

// String returns "backend/model".
func (c ModelConfig) String() string {
	return c.Backend.String() + "/" + c.Model
}

// MarshalModelConfig encodes the config in its persisted JSON form.
func MarshalModelConfig(c ModelConfig) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UnmarshalModelConfig decodes a persisted config.
func UnmarshalModelConfig(s string) (ModelConfig, error) {
	var c ModelConfig
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return ModelConfig{}, err
	}
	if strings.TrimSpace(c.Model) == "" {
		return ModelConfig{}, fmt.Errorf("model config has no model name")
	}
	return c, nil
}
