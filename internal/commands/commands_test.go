// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/diycursor/internal/assistant"
	"github.com/jeranaias/diycursor/internal/errs"
	"github.com/jeranaias/diycursor/internal/router"
	"github.com/jeranaias/diycursor/internal/session"
	"github.com/jeranaias/diycursor/internal/workspace"
)

type stubLocal struct {
	names []string
}

func (s *stubLocal) ModelNames(ctx context.Context) ([]string, error) { return s.names, nil }
func (s *stubLocal) Pull(ctx context.Context, name string) error      { return nil }
func (s *stubLocal) Generate(ctx context.Context, model, prompt string) (string, error) {
	return "answer from " + model, nil
}

type memPrefs map[string]string

func (p memPrefs) Get(key string) (string, bool, error) {
	v, ok := p[key]
	return v, ok, nil
}

func (p memPrefs) Set(key, value string) error {
	p[key] = value
	return nil
}

func newTestContext(t *testing.T) (*Context, *workspace.Store) {
	t.Helper()
	store := workspace.NewStore(filepath.Join(t.TempDir(), "projects"))
	_, err := store.CreateProject("demo")
	require.NoError(t, err)

	models := session.NewModelManager(session.ModelDeps{
		Local: &stubLocal{names: []string{"llama3.2"}},
		Prefs: memPrefs{},
	})
	files := session.NewFileManager(store, nil)
	return &Context{
		Ctx:       context.Background(),
		Models:    models,
		Files:     files,
		Assistant: assistant.NewController(files, models, nil),
	}, store
}

func run(t *testing.T, r *Registry, ctx *Context, input string) any {
	t.Helper()
	cmd := r.Execute(ctx, input)
	require.NotNil(t, cmd, input)
	return cmd()
}

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestParse(t *testing.T) {
	r := NewRegistry()

	res := r.Parse(`:key openai "sk test"`)
	assert.True(t, res.IsCommand)
	assert.Equal(t, ":key", res.CommandName)
	assert.Equal(t, []string{"openai", "sk test"}, res.Args)
	require.NotNil(t, res.Command)

	res = r.Parse(":M gpt-4o")
	require.NotNil(t, res.Command)
	assert.Equal(t, ":model", res.Command.Name)

	res = r.Parse("explain this")
	assert.False(t, res.IsCommand)
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{":new a.txt", []string{":new", "a.txt"}},
		{`:new "my file.txt"`, []string{":new", "my file.txt"}},
		{`:key openai ''`, []string{":key", "openai", ""}},
		{`:new 'it\'s.md'`, []string{":new", "it's.md"}},
		{"  ", nil},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, splitCommandLine(tc.in), tc.in)
	}
}

func TestValidateArgs(t *testing.T) {
	r := NewRegistry()
	key := r.Get(":key")

	assert.NoError(t, ValidateArgs(key, []string{"openai", "sk"}))

	err := ValidateArgs(key, []string{"openai"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required argument missing for argument 'secret'")

	err = ValidateArgs(key, []string{"mistral", "sk"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(got: mistral)")
}

// =============================================================================
// EXECUTION TESTS
// =============================================================================

func TestExecute_NotACommand(t *testing.T) {
	ctx, _ := newTestContext(t)
	assert.Nil(t, NewRegistry().Execute(ctx, "hello"))
}

func TestExecute_Unknown(t *testing.T) {
	ctx, _ := newTestContext(t)
	msg := run(t, NewRegistry(), ctx, ":frobnicate")
	errMsg, ok := msg.(ErrorMsg)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.Err, errs.ErrInvalidInput)
	assert.EqualError(t, errMsg.Err, "Unknown command: :frobnicate")
}

func TestModel_HostedWithoutKey(t *testing.T) {
	ctx, _ := newTestContext(t)
	msg := run(t, NewRegistry(), ctx, ":model gpt-4o")

	errMsg, ok := msg.(ErrorMsg)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.Err, errs.ErrMissingCredential)
}

func TestModel_LoadAndShow(t *testing.T) {
	ctx, _ := newTestContext(t)
	r := NewRegistry()

	msg := run(t, r, ctx, ":model")
	assert.Equal(t, SystemMessageMsg{Content: "No model loaded. Use :model <id> to load one."}, msg)

	msg = run(t, r, ctx, ":model llama3.2")
	assert.Equal(t, ModelLoadedMsg{Config: router.ModelConfig{Backend: router.BackendLocal, Model: "llama3.2"}}, msg)

	msg = run(t, r, ctx, ":model")
	assert.Equal(t, SystemMessageMsg{Content: "Current model: llama3.2 (Ollama)"}, msg)
}

func TestKey(t *testing.T) {
	ctx, _ := newTestContext(t)
	r := NewRegistry()

	msg := run(t, r, ctx, ":key anthropic sk-ant")
	assert.Equal(t, SystemMessageMsg{Content: "Anthropic API key saved"}, msg)
	assert.True(t, ctx.Models.HasCredential(router.BackendAnthropic))

	msg = run(t, r, ctx, ":model claude-3-haiku-20240307")
	assert.IsType(t, ModelLoadedMsg{}, msg)

	msg = run(t, r, ctx, `:key anthropic ""`)
	assert.Equal(t, SystemMessageMsg{Content: "Anthropic API key cleared"}, msg)
	assert.False(t, ctx.Models.HasCredential(router.BackendAnthropic))
}

func TestModels_List(t *testing.T) {
	ctx, _ := newTestContext(t)
	msg := run(t, NewRegistry(), ctx, ":models")

	sys, ok := msg.(SystemMessageMsg)
	require.True(t, ok)
	assert.Contains(t, sys.Content, "Local (Ollama):\n  llama3.2")
	assert.Contains(t, sys.Content, "Anthropic: (no API key)")
	assert.Contains(t, sys.Content, "  gpt-4o - GPT-4o")
}

func TestFileCommands(t *testing.T) {
	ctx, store := newTestContext(t)
	r := NewRegistry()

	assert.Equal(t, ProjectOpenedMsg{Project: "demo"}, run(t, r, ctx, ":open demo"))
	assert.Equal(t, FilesChangedMsg{Select: "notes.md"}, run(t, r, ctx, ":new notes.md"))
	assert.Equal(t, "notes.md", ctx.Files.Current())

	msg := run(t, r, ctx, ":new notes.md")
	errMsg, ok := msg.(ErrorMsg)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.Err, errs.ErrAlreadyExists)

	require.NoError(t, store.Write("demo", "other.md", "x"))
	assert.Equal(t, FilesChangedMsg{}, run(t, r, ctx, ":refresh"))
	assert.Equal(t, []string{"notes.md", "other.md"}, ctx.Files.Files())

	assert.Equal(t, FilesChangedMsg{}, run(t, r, ctx, ":rm"))
	assert.Empty(t, ctx.Files.Current())
	assert.Equal(t, []string{"other.md"}, ctx.Files.Files())

	msg = run(t, r, ctx, ":rm")
	errMsg, ok = msg.(ErrorMsg)
	require.True(t, ok)
	assert.EqualError(t, errMsg.Err, "no file selected")
}

func TestOpen_Missing(t *testing.T) {
	ctx, _ := newTestContext(t)
	msg := run(t, NewRegistry(), ctx, ":open ghost")
	errMsg, ok := msg.(ErrorMsg)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.Err, errs.ErrNotFound)
}

func TestClearAndCopy(t *testing.T) {
	ctx, _ := newTestContext(t)
	r := NewRegistry()

	assert.Equal(t, ConfirmClearMsg{}, run(t, r, ctx, ":clear"))

	msg := run(t, r, ctx, ":copy")
	assert.IsType(t, ErrorMsg{}, msg)

	run(t, r, ctx, ":model llama3.2")
	require.NoError(t, ctx.Assistant.Submit(context.Background(), "hi"))
	assert.Equal(t, CopyToClipboardMsg{Content: "answer from llama3.2"}, run(t, r, ctx, ":copy"))
}

func TestHelp(t *testing.T) {
	ctx, _ := newTestContext(t)
	msg := run(t, NewRegistry(), ctx, ":help")

	help, ok := msg.(ShowHelpMsg)
	require.True(t, ok)
	assert.Contains(t, help.Content, "Model:")
	assert.Contains(t, help.Content, ":key <anthropic|openai> <secret>")
	assert.Contains(t, help.Content, ":quit")
}

func TestQuit(t *testing.T) {
	ctx, _ := newTestContext(t)
	assert.Equal(t, QuitMsg{}, run(t, NewRegistry(), ctx, ":q"))
}

// =============================================================================
// COMPLETION TESTS
// =============================================================================

func TestComplete_CommandNames(t *testing.T) {
	c := NewCompleter(NewRegistry())

	got := c.Complete(":mo")
	require.Len(t, got, 2)
	assert.Equal(t, ":model", got[0].Value)
	assert.Equal(t, ":models", got[1].Value)

	assert.Nil(t, c.Complete("plain text"))
}

func TestComplete_Arguments(t *testing.T) {
	c := NewCompleter(NewRegistry())
	c.ModelsFn = func() []string { return []string{"llama3.2", "qwen2.5-coder:7b", "gpt-4o"} }
	c.FilesFn = func() []string { return []string{"src/main.go", "README.md"} }

	got := c.Complete(":model qwc")
	require.NotEmpty(t, got)
	assert.Equal(t, "qwen2.5-coder:7b", got[0].Value)

	got = c.Complete(":rm ")
	require.Len(t, got, 2)
	assert.Equal(t, "src/main.go", got[0].Value)

	got = c.Complete(":key ope")
	require.Len(t, got, 1)
	assert.Equal(t, "openai", got[0].Value)

	assert.Nil(t, c.Complete(":new x"), "free-form args have no candidates")
}

func TestApply(t *testing.T) {
	assert.Equal(t, ":model llama3.2 ", Apply(":model lla", Completion{Value: "llama3.2"}))
	assert.Equal(t, ":rm README.md ", Apply(":rm ", Completion{Value: "README.md"}))
	assert.Equal(t, `:open "my project" `, Apply(":open my", Completion{Value: "my project"}))
	assert.Equal(t, ":model ", Apply(":mo", Completion{Value: ":model"}))
}

func TestCompletionState(t *testing.T) {
	var cs CompletionState
	_, ok := cs.Current()
	assert.False(t, ok)

	cs.Update(":m", []Completion{{Value: ":model"}, {Value: ":models"}})
	cur, _ := cs.Current()
	assert.Equal(t, ":model", cur.Value)
	cs.Next()
	cur, _ = cs.Current()
	assert.Equal(t, ":models", cur.Value)
	cs.Next()
	cur, _ = cs.Current()
	assert.Equal(t, ":model", cur.Value)

	cs.Clear()
	assert.Empty(t, cs.Completions)
}
