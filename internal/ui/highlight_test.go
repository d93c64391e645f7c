// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlight(t *testing.T) {
	code := "package main\n\nfunc main() {}\n"
	out := Highlight(code, "main.go")

	assert.NotEqual(t, code, out)
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "main")
}

func TestLanguageOf(t *testing.T) {
	assert.Equal(t, "Go", LanguageOf("cmd/main.go"))
	assert.Equal(t, "Python", LanguageOf("app.py"))
	assert.Equal(t, "", LanguageOf("LICENSE.unknownext"))
}
