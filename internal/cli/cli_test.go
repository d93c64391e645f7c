// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/diycursor/internal/errs"
	"github.com/jeranaias/diycursor/internal/terminal"
)

// fakeOllama serves the daemon endpoints the CLI uses and records prompts.
type fakeOllama struct {
	mu      sync.Mutex
	prompts []string
}

func (f *fakeOllama) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func (f *fakeOllama) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "Ollama is running")
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"models":[{"name":"llama3.2:latest","size":2147483648}]}`)
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.prompts = append(f.prompts, req.Prompt)
		f.mu.Unlock()
		io.WriteString(w, `{"response":"local answer","done":true}`)
	})
	return mux
}

// isolate points the CLI at a fresh home directory and a fake daemon.
func isolate(t *testing.T) (string, *fakeOllama) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("DIYCURSOR_HOME", home)
	for _, v := range []string{"DIYCURSOR_PROJECTS_DIR", "DIYCURSOR_ANTHROPIC_URL", "DIYCURSOR_OPENAI_URL", "DIYCURSOR_LOG_LEVEL"} {
		t.Setenv(v, "")
	}

	daemon := &fakeOllama{}
	srv := httptest.NewServer(daemon.handler())
	t.Cleanup(srv.Close)
	t.Setenv("DIYCURSOR_OLLAMA_URL", srv.URL)
	return home, daemon
}

// runCLI executes one invocation and returns its stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root, s := newRootCmd()
	defer s.close()

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, "", args...)
	require.NoError(t, err, strings.Join(args, " "))
	return out
}

// =============================================================================
// PROJECT AND FILE TESTS
// =============================================================================

func TestProjectAndFiles(t *testing.T) {
	home, _ := isolate(t)

	out := mustRun(t, "project", "new", "demo")
	assert.Contains(t, out, "Created demo")
	assert.DirExists(t, filepath.Join(home, "projects", "demo"))

	out = mustRun(t, "project", "list")
	assert.Contains(t, out, "demo")

	// The new project became the default for files commands.
	out = mustRun(t, "files", "ls")
	assert.Contains(t, out, "README.md")

	mustRun(t, "files", "new", "src/a.go", "--content", "package a")
	out = mustRun(t, "files", "cat", "src/a.go")
	assert.Equal(t, "package a\n", out)

	out, err := runCLI(t, "# replaced\n", "files", "write", "README.md", "--project", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 11 bytes")
	assert.Equal(t, "# replaced\n", mustRun(t, "files", "cat", "README.md"))

	mustRun(t, "files", "rm", "src/a.go")
	out = mustRun(t, "files", "ls", "--flat")
	assert.Equal(t, "README.md\n", out)

	_, err = runCLI(t, "", "files", "new", "README.md")
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)

	_, err = runCLI(t, "", "project", "new", "demo")
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestFiles_NoProject(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "", "files", "ls")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = runCLI(t, "", "files", "ls", "--project", "ghost")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestFiles_PathEscape(t *testing.T) {
	isolate(t)
	mustRun(t, "project", "new", "demo")

	_, err := runCLI(t, "", "files", "cat", "../state.db")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestProjectRemove(t *testing.T) {
	home, _ := isolate(t)
	mustRun(t, "project", "new", "demo")

	_, err := runCLI(t, "", "project", "rm", "demo")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	assert.DirExists(t, filepath.Join(home, "projects", "demo"))

	mustRun(t, "project", "rm", "demo", "--force")
	assert.NoDirExists(t, filepath.Join(home, "projects", "demo"))
}

func TestProjectTemplates(t *testing.T) {
	isolate(t)
	out := mustRun(t, "project", "templates")
	assert.Contains(t, out, "nextjs")
	assert.Contains(t, out, "python-flask")
}

// =============================================================================
// MODEL TESTS
// =============================================================================

func TestModelsLoadAndAsk(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "", "ask", "anything")
	assert.ErrorIs(t, err, errs.ErrNoModelLoaded)

	out := mustRun(t, "models", "load", "llama3.2")
	assert.Contains(t, out, "llama3.2 (Ollama)")

	// The selection survives into the next invocation.
	out = mustRun(t, "models", "current")
	assert.Equal(t, "llama3.2 (Ollama)\n", out)

	out = mustRun(t, "ask", "what", "is", "this?")
	assert.Equal(t, "local answer\n", out)
}

func TestModelsList_ShowsSizes(t *testing.T) {
	isolate(t)

	out := mustRun(t, "models", "list")
	assert.Contains(t, out, "llama3.2:latest (2 GB)")
	assert.Contains(t, out, "Anthropic: (no API key)")
}

func TestModels_WorkWithoutProjectsDir(t *testing.T) {
	home, _ := isolate(t)
	blocker := filepath.Join(home, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	t.Setenv("DIYCURSOR_PROJECTS_DIR", filepath.Join(blocker, "projects"))

	out := mustRun(t, "models", "load", "llama3.2")
	assert.Contains(t, out, "Loaded llama3.2")
	assert.Equal(t, "local answer\n", mustRun(t, "ask", "hi"))

	_, err := runCLI(t, "", "project", "new", "demo")
	assert.Error(t, err)
}

func TestAsk_WithFile(t *testing.T) {
	_, daemon := isolate(t)
	mustRun(t, "project", "new", "demo")
	mustRun(t, "files", "new", "main.go", "--content", "package main")
	mustRun(t, "models", "load", "llama3.2")

	mustRun(t, "ask", "--file", "main.go", "explain")

	prompt := daemon.lastPrompt()
	assert.Contains(t, prompt, "Project: demo")
	assert.Contains(t, prompt, "Current file (main.go)")
	assert.Contains(t, prompt, "package main")
	assert.Contains(t, prompt, "User question: explain")
}

func TestModelsKey(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "", "models", "load", "gpt-4o")
	assert.ErrorIs(t, err, errs.ErrMissingCredential)

	out := mustRun(t, "models", "key", "openai", "sk-test-123")
	assert.Contains(t, out, "Stored OpenAI API key")
	assert.NotContains(t, out, "sk-test-123")

	out = mustRun(t, "models", "load", "gpt-4o")
	assert.Contains(t, out, "gpt-4o (OpenAI)")

	out = mustRun(t, "models", "list")
	assert.Contains(t, out, "llama3.2:latest")
	assert.Contains(t, out, "OpenAI:\n")
	assert.Contains(t, out, "Anthropic: (no API key)")

	out = mustRun(t, "models", "key", "openai", "")
	assert.Contains(t, out, "Removed OpenAI API key")

	_, err = runCLI(t, "", "models", "key", "local", "x")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestConfigCommands(t *testing.T) {
	home, _ := isolate(t)
	path := filepath.Join(home, "config.toml")

	assert.Equal(t, path+"\n", mustRun(t, "config", "path"))

	mustRun(t, "config", "init")
	assert.FileExists(t, path)
	_, err := runCLI(t, "", "config", "init")
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)

	mustRun(t, "config", "set", "editor.autosave_delay_ms", "2500")
	assert.Equal(t, "2500\n", mustRun(t, "config", "get", "editor.autosave_delay_ms"))

	_, err = runCLI(t, "", "config", "set", "editor.autosave_delay_ms", "1")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = runCLI(t, "", "config", "get", "editor.nope")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	out := mustRun(t, "config", "show", "--json")
	assert.Contains(t, out, `"autosave_delay_ms": 2500`)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfig_ExplicitPath(t *testing.T) {
	home, _ := isolate(t)
	path := filepath.Join(home, "alt.json")

	mustRun(t, "--config", path, "config", "init")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ollama_url"`)

	assert.Equal(t, path+"\n", mustRun(t, "--config", path, "config", "path"))
}

// =============================================================================
// TERMINAL TESTS
// =============================================================================

type scriptedReader struct {
	lines   []string
	history []string
}

func (r *scriptedReader) Prompt(string) (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) AppendHistory(item string) {
	r.history = append(r.history, item)
}

func TestRunTerm(t *testing.T) {
	var out bytes.Buffer
	in := &scriptedReader{lines: []string{"echo Hello", "  ", "bogus", "version"}}

	require.NoError(t, runTerm(&out, terminal.NewShell(), in))

	text := out.String()
	assert.Contains(t, text, terminal.Version)
	assert.Contains(t, text, "hello\n")
	assert.Contains(t, text, "Command not found: bogus")
	assert.NotContains(t, text, terminal.Prompt+"echo Hello")
	assert.Equal(t, []string{"echo Hello", "bogus", "version"}, in.history)
}

func TestRunTerm_Exit(t *testing.T) {
	var out bytes.Buffer
	in := &scriptedReader{lines: []string{"exit", "echo never"}}

	require.NoError(t, runTerm(&out, terminal.NewShell(), in))
	assert.NotContains(t, out.String(), "never")
}

func TestPrintReply_PlainForPipes(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printReply(&out, "# Title\n\n**bold**", false))
	assert.Equal(t, "# Title\n\n**bold**\n", out.String())
}

func TestDetectOutput_NonTerminals(t *testing.T) {
	assert.Equal(t, output{width: fallbackWidth}, detectOutput(&bytes.Buffer{}))

	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()
	o := detectOutput(f)
	assert.False(t, o.tty)
	assert.False(t, o.color)
	assert.Equal(t, fallbackWidth-4, o.wrapWidth())
}
