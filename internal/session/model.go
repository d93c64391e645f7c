// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/diycursor/internal/errs"
	"github.com/jeranaias/diycursor/internal/router"
	"github.com/jeranaias/diycursor/internal/storage"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// LocalClient is the local daemon surface the manager needs.
type LocalClient interface {
	ModelNames(ctx context.Context) ([]string, error)
	Pull(ctx context.Context, name string) error
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// HostedClient completes a prompt against a hosted provider.
type HostedClient interface {
	Complete(ctx context.Context, model, prompt, key string) (string, error)
}

// PrefStore is the persistent key/value store for preferences.
type PrefStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// apiKeys is the persisted form of the credential store.
type apiKeys struct {
	Anthropic string `json:"anthropic"`
	OpenAI    string `json:"openai"`
}

func marshalKeys(k apiKeys) (string, error) {
	data, err := json.Marshal(k)
	if err != nil {
		return "", errs.Wrap(errs.KindStorage, "failed to encode credentials", err)
	}
	return string(data), nil
}

func unmarshalKeys(raw string) (apiKeys, error) {
	var k apiKeys
	err := json.Unmarshal([]byte(raw), &k)
	return k, err
}

// =============================================================================
// MODEL MANAGER
// =============================================================================

// ModelDeps wires a ModelManager to its clients and preference store.
type ModelDeps struct {
	Local     LocalClient
	Anthropic HostedClient
	OpenAI    HostedClient
	Prefs     PrefStore
	Logger    *zap.Logger
}

// ModelManager owns the current model selection and the provider
// credentials, and routes generation to the matching backend.
//
// It is either in NoModel or ModelLoaded state; the loaded ModelConfig is
// replaced, never mutated. The mutex is never held across network or
// storage calls.
type ModelManager struct {
	mu sync.Mutex

	local  LocalClient
	hosted map[router.Backend]HostedClient
	prefs  PrefStore
	logger *zap.Logger

	current     *router.ModelConfig
	credentials map[router.Backend]string

	onModelChange func(router.ModelConfig)
}

// NewModelManager creates a manager with no model loaded.
func NewModelManager(deps ModelDeps) *ModelManager {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelManager{
		local: deps.Local,
		hosted: map[router.Backend]HostedClient{
			router.BackendAnthropic: deps.Anthropic,
			router.BackendOpenAI:    deps.OpenAI,
		},
		prefs:       deps.Prefs,
		logger:      logger,
		credentials: make(map[router.Backend]string),
	}
}

// OnModelChange registers a callback run after a model is loaded or restored.
func (m *ModelManager) OnModelChange(fn func(router.ModelConfig)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onModelChange = fn
}

// Current returns the loaded model config.
func (m *ModelManager) Current() (router.ModelConfig, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return router.ModelConfig{}, false
	}
	return *m.current, true
}

// HasCredential reports whether a credential is stored for backend.
func (m *ModelManager) HasCredential(backend router.Backend) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.credentials[backend] != ""
}

// =============================================================================
// CATALOG
// =============================================================================

// ListLocalModels returns the daemon's installed models. Any failure degrades
// to an empty list so the app stays usable without a local daemon.
func (m *ModelManager) ListLocalModels(ctx context.Context) []string {
	names, err := m.local.ModelNames(ctx)
	if err != nil {
		m.logger.Warn("failed to list local models", zap.Error(err))
		return []string{}
	}
	return names
}

// =============================================================================
// MODEL LOADING
// =============================================================================

// LoadModel resolves identifier to a backend and makes it current.
//
// Hosted models require a stored credential and fail with MissingCredential
// before any network call. Local models missing from the daemon catalog are
// pulled first; a failed pull returns PullFailed. The new config is
// persisted as last_model before it becomes current.
func (m *ModelManager) LoadModel(ctx context.Context, identifier string) (router.ModelConfig, error) {
	cfg := router.Resolve(identifier)
	if cfg.Model == "" {
		return router.ModelConfig{}, errs.New(errs.KindInvalidInput, "model identifier is required")
	}

	if cfg.Backend.IsHosted() {
		if !m.HasCredential(cfg.Backend) {
			return router.ModelConfig{}, missingCredential(cfg.Backend)
		}
	} else if err := m.ensureLocal(ctx, cfg.Model); err != nil {
		return router.ModelConfig{}, err
	}

	data, err := router.MarshalModelConfig(cfg)
	if err != nil {
		return router.ModelConfig{}, errs.Wrap(errs.KindInvalidInput, "invalid model config", err)
	}
	if err := m.prefs.Set(storage.KeyLastModel, data); err != nil {
		return router.ModelConfig{}, err
	}

	m.setCurrent(cfg)
	m.logger.Info("model loaded",
		zap.String("backend", cfg.Backend.String()),
		zap.String("model", cfg.Model))
	return cfg, nil
}

// ensureLocal pulls name unless the daemon already has it. A catalog failure
// counts as absent, so a pull is still attempted.
func (m *ModelManager) ensureLocal(ctx context.Context, name string) error {
	names, err := m.local.ModelNames(ctx)
	if err != nil {
		m.logger.Warn("failed to check local catalog", zap.String("model", name), zap.Error(err))
	}
	if catalogHas(names, name) {
		return nil
	}

	m.logger.Info("pulling model", zap.String("model", name))
	if err := m.local.Pull(ctx, name); err != nil {
		if errs.KindOf(err) == errs.KindPullFailed {
			return err
		}
		return errs.Wrap(errs.KindPullFailed, "failed to pull model "+name, err)
	}
	return nil
}

// catalogHas matches name exactly, or as name:latest when name has no tag.
func catalogHas(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
		if !strings.Contains(name, ":") && n == name+":latest" {
			return true
		}
	}
	return false
}

func (m *ModelManager) setCurrent(cfg router.ModelConfig) {
	m.mu.Lock()
	m.current = &cfg
	cb := m.onModelChange
	m.mu.Unlock()

	if cb != nil {
		cb(cfg)
	}
}

func missingCredential(b router.Backend) error {
	return errs.New(errs.KindMissingCredential,
		b.DisplayName()+" API key is not set. Please set an API key first.")
}

// =============================================================================
// CREDENTIALS
// =============================================================================

// SetCredential stores the secret for a hosted backend and persists the whole
// credential store as model_api_keys. The key is not validated against the
// provider; an empty secret clears it.
func (m *ModelManager) SetCredential(backend router.Backend, secret string) error {
	if !backend.IsHosted() {
		return errs.New(errs.KindInvalidInput, "credentials are only used by hosted backends, not "+backend.String())
	}

	m.mu.Lock()
	m.credentials[backend] = strings.TrimSpace(secret)
	keys := apiKeys{
		Anthropic: m.credentials[router.BackendAnthropic],
		OpenAI:    m.credentials[router.BackendOpenAI],
	}
	m.mu.Unlock()

	data, err := marshalKeys(keys)
	if err != nil {
		return err
	}
	if err := m.prefs.Set(storage.KeyModelAPIKeys, data); err != nil {
		return err
	}
	m.logger.Info("credential updated", zap.String("backend", backend.String()))
	return nil
}

// =============================================================================
// RESTORE
// =============================================================================

// Restore loads credentials and the last model from the preference store.
// Malformed entries are logged and ignored. No network call is made.
func (m *ModelManager) Restore() error {
	raw, ok, err := m.prefs.Get(storage.KeyModelAPIKeys)
	if err != nil {
		return err
	}
	if ok {
		keys, err := unmarshalKeys(raw)
		if err != nil {
			m.logger.Warn("ignoring malformed model_api_keys", zap.Error(err))
		} else {
			m.mu.Lock()
			m.credentials[router.BackendAnthropic] = keys.Anthropic
			m.credentials[router.BackendOpenAI] = keys.OpenAI
			m.mu.Unlock()
		}
	}

	raw, ok, err = m.prefs.Get(storage.KeyLastModel)
	if err != nil {
		return err
	}
	if ok {
		cfg, err := router.UnmarshalModelConfig(raw)
		if err != nil {
			m.logger.Warn("ignoring malformed last_model", zap.Error(err))
			return nil
		}
		m.setCurrent(cfg)
	}
	return nil
}

// =============================================================================
// GENERATION
// =============================================================================

// Generate sends prompt to the backend of the current model. Client failures
// are returned unchanged.
func (m *ModelManager) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return "", errs.ErrNoModelLoaded
	}
	cfg := *m.current
	key := m.credentials[cfg.Backend]
	m.mu.Unlock()

	switch cfg.Backend {
	case router.BackendLocal:
		return m.local.Generate(ctx, cfg.Model, prompt)
	case router.BackendAnthropic, router.BackendOpenAI:
		return m.hosted[cfg.Backend].Complete(ctx, cfg.Model, prompt, key)
	default:
		return "", errs.New(errs.KindInvalidInput, "unknown backend "+cfg.Backend.String())
	}
}
