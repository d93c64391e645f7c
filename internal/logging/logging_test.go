// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "diycursor.log")

	logger, err := New(Options{Level: "info", File: path})
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("model loaded", zap.String("model", "llama3"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "model loaded", entry["msg"])
	assert.Equal(t, "llama3", entry["model"])
}

func TestNew_DebugFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	logger, err := New(Options{Level: "error", File: path, Debug: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"debug": zapcore.DebugLevel,
		"WARN":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestRedact(t *testing.T) {
	tests := []struct {
		in       string
		leak     string
		contains string
	}{
		{"invalid x-api-key: sk-ant-api03-abcdefghijkl", "abcdefghijkl", "[REDACTED"},
		{"Incorrect API key provided: sk-proj-abcdefghijklmnopqrstuvwx", "abcdefghijklmnopqrstuvwx", "[REDACTED-KEY]"},
		{"Authorization: Bearer abc.def.ghi", "abc.def.ghi", "Bearer [REDACTED]"},
	}
	for _, tt := range tests {
		got := Redact(tt.in)
		assert.NotContains(t, got, tt.leak)
		assert.Contains(t, got, tt.contains)
	}

	assert.Equal(t, "connection refused", Redact("connection refused"))
}

func TestError(t *testing.T) {
	f := Error(errors.New("bad key sk-ant-secretsecret"))
	assert.Equal(t, "error", f.Key)
	assert.NotContains(t, f.String, "secretsecret")

	assert.Equal(t, zapcore.SkipType, Error(nil).Type)
}
