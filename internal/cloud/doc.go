// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the hosted model backends.
//
// Two providers are supported, each with a single non-streaming operation:
//
//   - AnthropicClient: POST /v1/messages with x-api-key auth
//   - OpenAIClient: POST /v1/chat/completions with bearer auth
//
// Both take the credential per call and classify failures with the errs
// package (AuthError, BackendError, BackendUnavailable). Requests are never
// retried.
//
// # Usage
//
//	text, err := cloud.NewAnthropicClient().
//	    WithLogger(logger).
//	    Complete(ctx, "claude-3-5-sonnet-latest", prompt, key)
//
// # Security
//
// Keys are never logged. Request logs carry the method, path, status and
// duration only; use MaskKey or KeyFingerprint when a key must be shown.
package cloud
