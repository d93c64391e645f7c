// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/diycursor/internal/errs"
)

// Configuration constants shared by the hosted providers.
const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 120 * time.Second

	// DefaultMaxTokens is the completion budget sent with every request.
	DefaultMaxTokens = 4000

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// DefaultRequestsPerSecond and DefaultBurst bound how fast one client
	// sends hosted requests.
	DefaultRequestsPerSecond = 2
	DefaultBurst             = 5
)

// Shared HTTP client with connection pooling for all hosted requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// userMessage is the single-turn message shape both providers accept.
type userMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// =============================================================================
// SHARED TRANSPORT
// =============================================================================

// transport holds what every hosted client needs: where to send requests,
// how, and where to log them.
type transport struct {
	provider   string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func newTransport(provider, baseURL string) transport {
	return transport{
		provider:   provider,
		baseURL:    baseURL,
		maxTokens:  DefaultMaxTokens,
		httpClient: sharedHTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultBurst),
		logger:     zap.NewNop(),
	}
}

// post sends body as JSON to path and decodes a 2xx answer into out.
// Failures are classified: transport errors as BackendUnavailable, 401/403
// as AuthError, any other non-2xx as BackendError carrying status and body.
func (t *transport) post(ctx context.Context, path string, setHeaders func(*http.Request), body, out any) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return errs.Wrap(errs.KindBackendUnavailable, t.provider+" request not sent", err)
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return errs.Wrap(errs.KindBackend, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return errs.Wrap(errs.KindBackendUnavailable, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "diycursor/0.1.0")
	setHeaders(req)

	t.logRequest(req)
	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errs.Wrap(errs.KindBackendUnavailable, t.provider+" request timed out", err)
		}
		return errs.Wrap(errs.KindBackendUnavailable, t.provider+" API unreachable", err)
	}
	defer resp.Body.Close()
	t.logResponse(resp, time.Since(start))

	data, err := readResponse(resp)
	if err != nil {
		return errs.Wrap(errs.KindBackend, t.provider+" API error", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return t.statusError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errs.Wrap(errs.KindBackend, "failed to parse "+t.provider+" response", err)
	}
	return nil
}

// setRateLimit replaces the request limiter. A non-positive rps disables
// limiting.
func (t *transport) setRateLimit(rps float64, burst int) {
	if rps <= 0 {
		t.limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	if burst < 1 {
		burst = 1
	}
	t.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

func (t *transport) statusError(status int, body []byte) error {
	text := strings.TrimSpace(string(body))
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &errs.Error{
			Kind:    errs.KindAuth,
			Message: fmt.Sprintf("%s API error: %d %s", t.provider, status, text),
			Status:  status,
			Body:    text,
		}
	}
	return errs.Backend(t.provider+" API error", status, text)
}

// logRequest logs an API request without headers (they carry the key) or body.
func (t *transport) logRequest(req *http.Request) {
	t.logger.Debug("api request",
		zap.String("provider", t.provider),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path))
}

func (t *transport) logResponse(resp *http.Response, duration time.Duration) {
	t.logger.Debug("api response",
		zap.String("provider", t.provider),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration))
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// KeyFingerprint returns a short SHA-256 fingerprint of a credential, safe to
// show or log in place of the key itself.
func KeyFingerprint(key string) string {
	if key == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:4])
}

// MaskKey describes a credential without exposing any part of it.
func MaskKey(key string) string {
	if key == "" {
		return "[not set]"
	}
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(key), KeyFingerprint(key))
}
