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
	// DefaultOpenAIURL is the base URL for the OpenAI API.
	DefaultOpenAIURL = "https://api.openai.com"

	// NoResponseFromModel is returned when a completion has no message text.
	NoResponseFromModel = "No response from model."

	openAIKeyMissing = "OpenAI API key is not set. Please set an API key first."
)

type openAIRequest struct {
	Model     string        `json:"model"`
	Messages  []userMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index   int         `json:"index"`
		Message userMessage `json:"message"`
	} `json:"choices"`
}

// OpenAIClient sends single-turn requests to the chat completions API.
type OpenAIClient struct {
	transport
}

// NewOpenAIClient creates a client for the public OpenAI endpoint.
func NewOpenAIClient() *OpenAIClient {
	return &OpenAIClient{transport: newTransport("OpenAI", DefaultOpenAIURL)}
}

// WithBaseURL sets a custom base URL (for testing or compatible servers).
func (c *OpenAIClient) WithBaseURL(url string) *OpenAIClient {
	if url != "" {
		c.baseURL = strings.TrimRight(url, "/")
	}
	return c
}

// WithTimeout sets a per-client request timeout.
func (c *OpenAIClient) WithTimeout(timeout time.Duration) *OpenAIClient {
	if timeout > 0 {
		c.httpClient = &http.Client{Transport: sharedHTTPClient.Transport, Timeout: timeout}
	}
	return c
}

// WithMaxTokens overrides the completion budget.
func (c *OpenAIClient) WithMaxTokens(n int) *OpenAIClient {
	if n > 0 {
		c.maxTokens = n
	}
	return c
}

// WithRateLimit caps requests per second with the given burst.
// A non-positive rps removes the cap.
func (c *OpenAIClient) WithRateLimit(rps float64, burst int) *OpenAIClient {
	c.setRateLimit(rps, burst)
	return c
}

// WithLogger sets the logger used for request tracing.
func (c *OpenAIClient) WithLogger(logger *zap.Logger) *OpenAIClient {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Complete sends prompt as a single user message and returns the content of
// the first choice. An empty key fails with AuthError before any request.
func (c *OpenAIClient) Complete(ctx context.Context, model, prompt, key string) (string, error) {
	if key == "" {
		return "", errs.New(errs.KindAuth, openAIKeyMissing)
	}

	reqBody := openAIRequest{
		Model:     model,
		Messages:  []userMessage{{Role: "user", Content: prompt}},
		MaxTokens: c.maxTokens,
	}

	var resp openAIResponse
	err := c.post(ctx, "/v1/chat/completions", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+key)
	}, reqBody, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return NoResponseFromModel, nil
	}
	return resp.Choices[0].Message.Content, nil
}
