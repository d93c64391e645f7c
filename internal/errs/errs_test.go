// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package errs

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := New(KindMissingCredential, "Anthropic API key is not set. Please set an API key first.")

	assert.True(t, errors.Is(err, ErrMissingCredential))
	assert.False(t, errors.Is(err, ErrAuth))

	wrapped := fmt.Errorf("load model: %w", err)
	assert.True(t, errors.Is(wrapped, ErrMissingCredential))
	assert.Equal(t, KindMissingCredential, KindOf(wrapped))
}

func TestError_BackendMessage(t *testing.T) {
	err := Backend("Anthropic API error", 529, `{"error":"overloaded"}`)

	assert.Equal(t, `Anthropic API error: 529 {"error":"overloaded"}`, err.Error())
	assert.True(t, errors.Is(err, ErrBackend))
}

func TestError_Unwrap(t *testing.T) {
	err := Wrap(KindStorage, "failed to read file: a.txt", io.ErrUnexpectedEOF)

	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.True(t, errors.Is(err, ErrStorage))
	assert.Equal(t, "failed to read file: a.txt: unexpected EOF", err.Error())
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindMissingCredential, "MissingCredential"},
		{KindAuth, "AuthError"},
		{KindBackend, "BackendError"},
		{KindNotFound, "NotFound"},
		{KindCommandFailed, "CommandFailed"},
		{Kind(99), "Unknown"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.kind.String())
	}
}
