// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"encoding/json"
	"testing"
)

// =============================================================================
// CLASSIFICATION TESTS
// =============================================================================

func TestClassify(t *testing.T) {
	tests := []struct {
		id   string
		want Backend
	}{
		{"claude-3-5-sonnet-latest", BackendAnthropic},
		{"claude", BackendAnthropic},
		{"gpt-4o", BackendOpenAI},
		{"gpt-4o-mini", BackendOpenAI},
		{"  gpt-4o  ", BackendOpenAI},
		{"llama3.2:3b", BackendLocal},
		{"qwen2.5-coder:14b", BackendLocal},
		{"Claude-3", BackendLocal}, // prefixes are case sensitive
		{"my-gpt", BackendLocal},
		{"", BackendLocal},
	}

	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			if got := Classify(tc.id); got != tc.want {
				t.Errorf("Classify(%q) = %v, want %v", tc.id, got, tc.want)
			}
		})
	}
}

func TestResolve_TrimsIdentifier(t *testing.T) {
	cfg := Resolve("  gpt-4o ")
	if cfg.Model != "gpt-4o" {
		t.Errorf("Model = %q, want 'gpt-4o'", cfg.Model)
	}
	if cfg.Backend != BackendOpenAI {
		t.Errorf("Backend = %v, want openai", cfg.Backend)
	}
}

// =============================================================================
// BACKEND TESTS
// =============================================================================

func TestBackend_String(t *testing.T) {
	tests := []struct {
		b    Backend
		want string
	}{
		{BackendLocal, "local"},
		{BackendAnthropic, "anthropic"},
		{BackendOpenAI, "openai"},
		{Backend(9), "Backend(9)"},
	}
	for _, tc := range tests {
		if got := tc.b.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestBackend_IsHosted(t *testing.T) {
	if BackendLocal.IsHosted() {
		t.Error("local backend should not be hosted")
	}
	if !BackendAnthropic.IsHosted() || !BackendOpenAI.IsHosted() {
		t.Error("anthropic and openai should be hosted")
	}
}

func TestParseBackend(t *testing.T) {
	for _, name := range []string{"local", "Ollama", " anthropic ", "openai"} {
		if _, err := ParseBackend(name); err != nil {
			t.Errorf("ParseBackend(%q) error: %v", name, err)
		}
	}
	if _, err := ParseBackend("gemini"); err == nil {
		t.Error("ParseBackend(gemini) should fail")
	}
}

// =============================================================================
// MODEL CONFIG PERSISTENCE TESTS
// =============================================================================

func TestModelConfig_JSONShape(t *testing.T) {
	data, err := MarshalModelConfig(ModelConfig{Backend: BackendAnthropic, Model: "claude-3-haiku"})
	if err != nil {
		t.Fatalf("MarshalModelConfig: %v", err)
	}
	if data != `{"type":"anthropic","name":"claude-3-haiku"}` {
		t.Errorf("persisted form = %s", data)
	}
}

func TestModelConfig_RoundTrip(t *testing.T) {
	in := ModelConfig{Backend: BackendOpenAI, Model: "gpt-4o"}
	data, err := MarshalModelConfig(in)
	if err != nil {
		t.Fatalf("MarshalModelConfig: %v", err)
	}
	out, err := UnmarshalModelConfig(data)
	if err != nil {
		t.Fatalf("UnmarshalModelConfig: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestUnmarshalModelConfig_Invalid(t *testing.T) {
	for _, s := range []string{"not json", `{"type":"local"}`, `{"type":"bogus","name":"x"}`} {
		if _, err := UnmarshalModelConfig(s); err == nil {
			t.Errorf("UnmarshalModelConfig(%q) should fail", s)
		}
	}
}

func TestBackend_MarshalInvalid(t *testing.T) {
	if _, err := json.Marshal(ModelConfig{Backend: Backend(7), Model: "x"}); err == nil {
		t.Error("marshal of invalid backend should fail")
	}
}
