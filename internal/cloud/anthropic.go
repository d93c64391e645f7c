// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/diycursor/internal/errs"
)

const (
	// DefaultAnthropicURL is the base URL for the Anthropic API.
	DefaultAnthropicURL = "https://api.anthropic.com"

	// DefaultAnthropicVersion is sent as the anthropic-version header.
	DefaultAnthropicVersion = "2023-06-01"

	// NoResponseFromClaude is returned when a message has no text content.
	NoResponseFromClaude = "No response from Claude."

	anthropicKeyMissing = "Anthropic API key is not set. Please set an API key first."
)

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []userMessage `json:"messages"`
}

type anthropicResponse struct {
	ID      string `json:"id"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// AnthropicClient sends single-turn requests to the messages API.
// The credential is passed per call, so one client serves any key.
type AnthropicClient struct {
	transport
	version string
}

// NewAnthropicClient creates a client for the public Anthropic endpoint.
func NewAnthropicClient() *AnthropicClient {
	return &AnthropicClient{
		transport: newTransport("Anthropic", DefaultAnthropicURL),
		version:   DefaultAnthropicVersion,
	}
}

// WithBaseURL sets a custom base URL (for testing or proxies).
func (c *AnthropicClient) WithBaseURL(url string) *AnthropicClient {
	if url != "" {
		c.baseURL = strings.TrimRight(url, "/")
	}
	return c
}

// WithTimeout sets a per-client request timeout.
func (c *AnthropicClient) WithTimeout(timeout time.Duration) *AnthropicClient {
	if timeout > 0 {
		c.httpClient = &http.Client{Transport: sharedHTTPClient.Transport, Timeout: timeout}
	}
	return c
}

// WithVersion overrides the anthropic-version header.
func (c *AnthropicClient) WithVersion(version string) *AnthropicClient {
	if version != "" {
		c.version = version
	}
	return c
}

// WithMaxTokens overrides the completion budget.
func (c *AnthropicClient) WithMaxTokens(n int) *AnthropicClient {
	if n > 0 {
		c.maxTokens = n
	}
	return c
}

// WithRateLimit caps requests per second with the given burst.
// A non-positive rps removes the cap.
func (c *AnthropicClient) WithRateLimit(rps float64, burst int) *AnthropicClient {
	c.setRateLimit(rps, burst)
	return c
}

// WithLogger sets the logger used for request tracing.
func (c *AnthropicClient) WithLogger(logger *zap.Logger) *AnthropicClient {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Complete sends prompt as a single user message and returns the text of the
// first content block. An empty key fails with AuthError before any request.
func (c *AnthropicClient) Complete(ctx context.Context, model, prompt, key string) (string, error) {
	if key == "" {
		return "", errs.New(errs.KindAuth, anthropicKeyMissing)
	}

	reqBody := anthropicRequest{
		Model:     model,
		MaxTokens: c.maxTokens,
		Messages:  []userMessage{{Role: "user", Content: prompt}},
	}

	var resp anthropicResponse
	err := c.post(ctx, "/v1/messages", func(req *http.Request) {
		req.Header.Set("x-api-key", key)
		req.Header.Set("anthropic-version", c.version)
	}, reqBody, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Content) == 0 || resp.Content[0].Text == "" {
		return NoResponseFromClaude, nil
	}
	return resp.Content[0].Text, nil
}
