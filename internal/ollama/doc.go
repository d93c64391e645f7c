// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the local Ollama daemon.
//
// Only the non-streaming surface is used: the model catalog (/api/tags),
// blocking pulls (/api/pull) and single-shot generation (/api/generate).
// Failures are classified with the errs package; nothing is retried.
//
// # Usage
//
//	client := ollama.NewClient()
//	if err := client.Pull(ctx, "llama3.2"); err != nil {
//	    return err // errs.KindPullFailed
//	}
//	text, err := client.Generate(ctx, "llama3.2", prompt)
package ollama
