// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	assert.Len(t, c.List(), 8)

	flask, ok := c.Get("python-flask")
	require.True(t, ok)
	assert.Equal(t, "Python Flask", flask.Name)
	assert.Equal(t, "mkdir -p app && touch app/__init__.py app/routes.py requirements.txt", flask.Command)
	assert.Empty(t, flask.PostCommands)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestParseCatalog_Rejects(t *testing.T) {
	tests := map[string]string{
		"bad yaml":     "templates: [",
		"missing id":   "templates:\n  - name: X\n    command: true\n",
		"duplicate id": "templates:\n  - id: a\n    command: x\n  - id: a\n    command: y\n",
		"no command":   "templates:\n  - id: a\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestRender(t *testing.T) {
	assert.Equal(t, `{"name": "demo"}`, render(`{"name": "{{name}}"}`, "demo"))
}
