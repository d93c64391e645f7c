// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/diycursor/internal/errs"
)

// NoResponseText is returned when the daemon answers without any text.
const NoResponseText = "No response from model."

// maxErrorBody caps how much of an error response is kept in BackendError.
const maxErrorBody = 64 * 1024

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the Ollama client.
type ClientConfig struct {
	// BaseURL is the Ollama API base URL (default: http://127.0.0.1:11434)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6 resolution issues on Windows
	BaseURL string

	// Timeout for catalog and generate requests (default: 5m).
	// Generation on a cold model can take a long time.
	Timeout time.Duration

	// PullTimeout bounds a blocking model pull (default: 1h).
	PullTimeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:     "http://127.0.0.1:11434",
		Timeout:     5 * time.Minute,
		PullTimeout: time.Hour,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the local Ollama daemon. It is safe for concurrent use.
//
// Example:
//
//	client := ollama.NewClient()
//	names, err := client.ListModels(ctx)
//	text, err := client.Generate(ctx, "llama3.2", "Explain defer")
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	pullClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Ollama client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new Ollama client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:11434"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Minute
	}
	if config.PullTimeout == 0 {
		config.PullTimeout = time.Hour
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		pullClient: &http.Client{Timeout: config.PullTimeout},
		logger:     zap.NewNop(),
	}
}

// WithLogger sets the logger used to trace daemon requests.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// BaseURL returns the daemon address this client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that Ollama is reachable and running.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL, nil)
	if err != nil {
		return errs.Wrap(errs.KindBackendUnavailable, "failed to create request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unavailable(err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return errs.Backend("Ollama API error", resp.StatusCode, resp.Status)
	}
	return nil
}

// =============================================================================
// MODEL OPERATIONS
// =============================================================================

// ListModels retrieves all models installed in the local daemon.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindBackendUnavailable, "failed to create request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unavailable(err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errs.Wrap(errs.KindBackend, "failed to decode model list", err)
	}
	return result.Models, nil
}

// ModelNames returns just the names of the installed models.
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	resp := ListModelsResponse{Models: models}
	return resp.Names(), nil
}

// Pull downloads a model and blocks until the daemon reports completion.
// Every failure is reported as PullFailed.
func (c *Client) Pull(ctx context.Context, name string) error {
	body, err := json.Marshal(PullRequest{Name: name, Stream: false})
	if err != nil {
		return errs.Wrap(errs.KindPullFailed, "failed to marshal pull request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return errs.Wrap(errs.KindPullFailed, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("pulling model", zap.String("model", name))
	start := time.Now()
	resp, err := c.pullClient.Do(req)
	if err != nil {
		return errs.Wrap(errs.KindPullFailed, "failed to pull model "+name, unavailable(err))
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errs.Wrap(errs.KindPullFailed, "failed to pull model "+name, apiError(resp))
	}

	// A 200 can still carry an error object when the name is unknown upstream.
	var status struct {
		PullResponse
		OllamaError
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err == nil && status.OllamaError.Error != "" {
		return errs.Wrap(errs.KindPullFailed, "failed to pull model "+name, errors.New(status.OllamaError.Error))
	}
	c.logger.Info("model pulled", zap.String("model", name), zap.Duration("duration", time.Since(start)))
	return nil
}

// =============================================================================
// GENERATION
// =============================================================================

// Generate sends a single non-streaming completion request and returns the
// response text, or NoResponseText when the daemon produced none.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(GenerateRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", errs.Wrap(errs.KindBackend, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", errs.Wrap(errs.KindBackendUnavailable, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", unavailable(err)
	}
	defer drainAndClose(resp.Body)
	c.logger.Debug("ollama response",
		zap.String("path", "/api/generate"),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apiError(resp)
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errs.Wrap(errs.KindBackend, "failed to decode response", err)
	}
	if result.EvalCount > 0 {
		c.logger.Debug("generation stats",
			zap.String("model", model),
			zap.Int("tokens", result.EvalCount),
			zap.Float64("tokens_per_second", result.TokensPerSecond()))
	}
	if result.Response == "" {
		return NoResponseText, nil
	}
	return result.Response, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func unavailable(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(errs.KindBackendUnavailable, "Ollama request timed out", err)
	}
	return errs.Wrap(errs.KindBackendUnavailable, "Ollama is not running", err)
}

// apiError builds "Ollama API error: <status> <detail>" from a non-2xx
// response, preferring the daemon's own error message over the raw body.
func apiError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := http.StatusText(resp.StatusCode)
	var oe OllamaError
	if json.Unmarshal(data, &oe) == nil && oe.Error != "" {
		detail = oe.Error
	} else if s := strings.TrimSpace(string(data)); s != "" {
		detail = s
	}
	return errs.Backend("Ollama API error", resp.StatusCode, detail)
}

func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
