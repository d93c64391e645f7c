// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/diycursor/internal/errs"
	"github.com/jeranaias/diycursor/internal/router"
	"github.com/jeranaias/diycursor/internal/storage"
)

type modelFixture struct {
	local     *fakeLocal
	anthropic *fakeHosted
	openai    *fakeHosted
	prefs     *fakePrefs
	mgr       *ModelManager
}

func newModelFixture() *modelFixture {
	f := &modelFixture{
		local:     &fakeLocal{response: "local answer"},
		anthropic: &fakeHosted{reply: "claude answer"},
		openai:    &fakeHosted{reply: "gpt answer"},
		prefs:     newFakePrefs(),
	}
	f.mgr = NewModelManager(ModelDeps{
		Local:     f.local,
		Anthropic: f.anthropic,
		OpenAI:    f.openai,
		Prefs:     f.prefs,
	})
	return f
}

func (f *modelFixture) networkCalls() int {
	return f.local.calls + f.anthropic.calls + f.openai.calls
}

// =============================================================================
// LOAD MODEL TESTS
// =============================================================================

func TestLoadModel_HostedWithoutCredential(t *testing.T) {
	for _, id := range []string{"gpt-4o", "gpt-3.5-turbo", "claude-3-haiku-20240307", "claude-3-opus-20240229"} {
		t.Run(id, func(t *testing.T) {
			f := newModelFixture()

			_, err := f.mgr.LoadModel(context.Background(), id)

			assert.ErrorIs(t, err, errs.ErrMissingCredential)
			assert.Zero(t, f.networkCalls(), "no network call may be attempted")
			_, loaded := f.mgr.Current()
			assert.False(t, loaded)
			_, persisted := f.prefs.values[storage.KeyLastModel]
			assert.False(t, persisted)
		})
	}
}

func TestLoadModel_MissingCredentialMessage(t *testing.T) {
	f := newModelFixture()
	_, err := f.mgr.LoadModel(context.Background(), "gpt-4o")
	assert.EqualError(t, err, "OpenAI API key is not set. Please set an API key first.")
}

func TestLoadModel_PersistsConfig(t *testing.T) {
	tests := []struct {
		id      string
		backend router.Backend
	}{
		{"gpt-4o", router.BackendOpenAI},
		{"claude-3-haiku-20240307", router.BackendAnthropic},
		{"llama3.2", router.BackendLocal},
	}

	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			f := newModelFixture()
			f.local.catalog = []string{"llama3.2"}
			require.NoError(t, f.mgr.SetCredential(router.BackendOpenAI, "sk-openai"))
			require.NoError(t, f.mgr.SetCredential(router.BackendAnthropic, "sk-ant"))

			cfg, err := f.mgr.LoadModel(context.Background(), tc.id)
			require.NoError(t, err)
			assert.Equal(t, tc.backend, cfg.Backend)

			current, ok := f.mgr.Current()
			require.True(t, ok)
			persisted, err := router.UnmarshalModelConfig(f.prefs.values[storage.KeyLastModel])
			require.NoError(t, err)
			assert.Equal(t, current, persisted)
		})
	}
}

func TestLoadModel_LocalPresentSkipsPull(t *testing.T) {
	f := newModelFixture()
	f.local.catalog = []string{"llama3.2:latest"}

	_, err := f.mgr.LoadModel(context.Background(), "llama3.2")
	require.NoError(t, err)
	assert.Empty(t, f.local.pulled)
}

func TestLoadModel_LocalAbsentPulls(t *testing.T) {
	f := newModelFixture()
	f.local.catalog = []string{"mistral"}

	_, err := f.mgr.LoadModel(context.Background(), "qwen2.5-coder:7b")
	require.NoError(t, err)
	assert.Equal(t, []string{"qwen2.5-coder:7b"}, f.local.pulled)
}

func TestLoadModel_CatalogFailureStillPulls(t *testing.T) {
	f := newModelFixture()
	f.local.listErr = errs.New(errs.KindBackendUnavailable, "Ollama is not running")

	_, err := f.mgr.LoadModel(context.Background(), "llama3.2")
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2"}, f.local.pulled)
}

func TestLoadModel_PullFailed(t *testing.T) {
	f := newModelFixture()
	f.local.pullErr = errors.New("connection reset")

	_, err := f.mgr.LoadModel(context.Background(), "llama3.2")
	assert.ErrorIs(t, err, errs.ErrPullFailed)
	_, loaded := f.mgr.Current()
	assert.False(t, loaded)
}

func TestLoadModel_PersistFailureKeepsState(t *testing.T) {
	f := newModelFixture()
	f.local.catalog = []string{"llama3.2"}
	f.prefs.setErr = errs.New(errs.KindStorage, "disk full")

	_, err := f.mgr.LoadModel(context.Background(), "llama3.2")
	assert.ErrorIs(t, err, errs.ErrStorage)
	_, loaded := f.mgr.Current()
	assert.False(t, loaded)
}

func TestLoadModel_EmptyIdentifier(t *testing.T) {
	f := newModelFixture()
	_, err := f.mgr.LoadModel(context.Background(), "   ")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestLoadModel_NotifiesChange(t *testing.T) {
	f := newModelFixture()
	f.local.catalog = []string{"llama3.2"}

	var got router.ModelConfig
	f.mgr.OnModelChange(func(cfg router.ModelConfig) { got = cfg })

	_, err := f.mgr.LoadModel(context.Background(), "llama3.2")
	require.NoError(t, err)
	assert.Equal(t, router.ModelConfig{Backend: router.BackendLocal, Model: "llama3.2"}, got)
}

// =============================================================================
// CATALOG TESTS
// =============================================================================

func TestListLocalModels_DegradesToEmpty(t *testing.T) {
	f := newModelFixture()
	f.local.listErr = errs.New(errs.KindBackendUnavailable, "Ollama is not running")

	names := f.mgr.ListLocalModels(context.Background())
	assert.NotNil(t, names)
	assert.Empty(t, names)
}

func TestListLocalModels(t *testing.T) {
	f := newModelFixture()
	f.local.catalog = []string{"llama3.2", "mistral"}
	assert.Equal(t, []string{"llama3.2", "mistral"}, f.mgr.ListLocalModels(context.Background()))
}

// =============================================================================
// CREDENTIAL TESTS
// =============================================================================

func TestSetCredential_Persists(t *testing.T) {
	f := newModelFixture()

	require.NoError(t, f.mgr.SetCredential(router.BackendAnthropic, " sk-ant "))
	assert.True(t, f.mgr.HasCredential(router.BackendAnthropic))
	assert.False(t, f.mgr.HasCredential(router.BackendOpenAI))
	assert.JSONEq(t, `{"anthropic":"sk-ant","openai":""}`, f.prefs.values[storage.KeyModelAPIKeys])
	assert.Zero(t, f.networkCalls(), "keys are not validated live")
}

func TestSetCredential_RejectsLocal(t *testing.T) {
	f := newModelFixture()
	err := f.mgr.SetCredential(router.BackendLocal, "x")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestSetCredential_EmptyClears(t *testing.T) {
	f := newModelFixture()
	require.NoError(t, f.mgr.SetCredential(router.BackendOpenAI, "sk"))
	require.NoError(t, f.mgr.SetCredential(router.BackendOpenAI, ""))
	assert.False(t, f.mgr.HasCredential(router.BackendOpenAI))
}

// =============================================================================
// RESTORE TESTS
// =============================================================================

func TestRestore(t *testing.T) {
	f := newModelFixture()
	f.prefs.values[storage.KeyModelAPIKeys] = `{"anthropic":"sk-ant","openai":"sk-oai"}`
	f.prefs.values[storage.KeyLastModel] = `{"type":"anthropic","name":"claude-3-haiku-20240307"}`

	require.NoError(t, f.mgr.Restore())

	cfg, ok := f.mgr.Current()
	require.True(t, ok)
	assert.Equal(t, router.ModelConfig{Backend: router.BackendAnthropic, Model: "claude-3-haiku-20240307"}, cfg)
	assert.True(t, f.mgr.HasCredential(router.BackendOpenAI))
	assert.Zero(t, f.networkCalls())
}

func TestRestore_IgnoresMalformed(t *testing.T) {
	f := newModelFixture()
	f.prefs.values[storage.KeyModelAPIKeys] = `not json`
	f.prefs.values[storage.KeyLastModel] = `{"type":"local"}`

	require.NoError(t, f.mgr.Restore())

	_, ok := f.mgr.Current()
	assert.False(t, ok)
	assert.False(t, f.mgr.HasCredential(router.BackendAnthropic))
}

func TestRestore_Empty(t *testing.T) {
	f := newModelFixture()
	require.NoError(t, f.mgr.Restore())
	_, ok := f.mgr.Current()
	assert.False(t, ok)
}

// =============================================================================
// GENERATE TESTS
// =============================================================================

func TestGenerate_NoModelLoaded(t *testing.T) {
	f := newModelFixture()
	_, err := f.mgr.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, errs.ErrNoModelLoaded)
	assert.Zero(t, f.networkCalls())
}

func TestGenerate_DispatchesByBackend(t *testing.T) {
	f := newModelFixture()
	f.local.catalog = []string{"llama3.2"}
	require.NoError(t, f.mgr.SetCredential(router.BackendAnthropic, "sk-ant"))
	require.NoError(t, f.mgr.SetCredential(router.BackendOpenAI, "sk-oai"))
	ctx := context.Background()

	_, err := f.mgr.LoadModel(ctx, "claude-3-haiku-20240307")
	require.NoError(t, err)
	text, err := f.mgr.Generate(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "claude answer", text)
	assert.Equal(t, "sk-ant", f.anthropic.lastKey)
	assert.Equal(t, "hello", f.anthropic.prompt)

	_, err = f.mgr.LoadModel(ctx, "gpt-4o")
	require.NoError(t, err)
	text, err = f.mgr.Generate(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "gpt answer", text)
	assert.Equal(t, "sk-oai", f.openai.lastKey)

	_, err = f.mgr.LoadModel(ctx, "llama3.2")
	require.NoError(t, err)
	text, err = f.mgr.Generate(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "local answer", text)
	assert.Equal(t, "llama3.2", f.local.lastModel)
}

func TestGenerate_PropagatesClientError(t *testing.T) {
	f := newModelFixture()
	want := errs.Backend("OpenAI API error", 429, "rate limited")
	f.openai.err = want
	require.NoError(t, f.mgr.SetCredential(router.BackendOpenAI, "sk"))
	_, err := f.mgr.LoadModel(context.Background(), "gpt-4o")
	require.NoError(t, err)

	_, err = f.mgr.Generate(context.Background(), "hi")
	assert.Same(t, want, err)
}
