// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/diycursor/internal/errs"
)

func newTestStore(t *testing.T, projects ...string) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "projects"))
	require.NoError(t, store.EnsureRoot())
	for _, p := range projects {
		require.NoError(t, os.Mkdir(filepath.Join(store.Root(), p), 0755))
	}
	return store
}

func writeTestFile(t *testing.T, store *Store, project, rel, content string) {
	t.Helper()
	full := filepath.Join(store.Root(), project, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

// =============================================================================
// PROJECT TESTS
// =============================================================================

func TestProjects_SortedDirectoriesOnly(t *testing.T) {
	store := newTestStore(t, "zeta", "alpha")
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "stray.txt"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(store.Root(), ".hidden"), 0755))

	names, err := store.Projects()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestProjects_MissingRoot(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent"))
	names, err := store.Projects()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCreateProject(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "projects"))

	dir, err := store.CreateProject("demo")
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.True(t, store.ProjectExists("demo"))

	_, err = store.CreateProject("demo")
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)

	require.NoError(t, store.RemoveProject("demo"))
	assert.False(t, store.ProjectExists("demo"))
}

func TestValidateProjectName(t *testing.T) {
	for _, name := range []string{"demo", "my-app", "app_2"} {
		assert.NoError(t, ValidateProjectName(name), name)
	}
	for _, name := range []string{"", " ", "..", "a/b", `a\b`, "node_modules", " padded"} {
		assert.ErrorIs(t, ValidateProjectName(name), errs.ErrInvalidInput, name)
	}
}

// =============================================================================
// LISTING TESTS
// =============================================================================

func TestList_SkipsReservedDirs(t *testing.T) {
	store := newTestStore(t, "demo")
	writeTestFile(t, store, "demo", "README.md", "# demo")
	writeTestFile(t, store, "demo", "src/main.js", "")
	writeTestFile(t, store, "demo", "node_modules/react/index.js", "")
	writeTestFile(t, store, "demo", ".git/HEAD", "")
	writeTestFile(t, store, "demo", "src/.git/config", "")

	files, err := store.List(context.Background(), "demo")
	require.NoError(t, err)

	want := []string{"README.md", "src/main.js"}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}

func TestList_MissingProject(t *testing.T) {
	store := newTestStore(t)
	_, err := store.List(context.Background(), "ghost")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestList_CancelledContext(t *testing.T) {
	store := newTestStore(t, "demo")
	writeTestFile(t, store, "demo", "a.txt", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.List(ctx, "demo")
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// FILE OPERATION TESTS
// =============================================================================

func TestFileLifecycle(t *testing.T) {
	store := newTestStore(t, "demo")
	ctx := context.Background()

	require.NoError(t, store.Create("demo", "a.txt", "hi"))

	content, err := store.Read("demo", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", content)

	require.NoError(t, store.Delete("demo", "a.txt"))

	files, err := store.List(ctx, "demo")
	require.NoError(t, err)
	assert.NotContains(t, files, "a.txt")
}

func TestCreate_DoesNotOverwrite(t *testing.T) {
	store := newTestStore(t, "demo")

	require.NoError(t, store.Create("demo", "a.txt", "original"))
	err := store.Create("demo", "a.txt", "replacement")
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)

	content, err := store.Read("demo", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "original", content)
}

func TestCreate_MakesParents(t *testing.T) {
	store := newTestStore(t, "demo")
	require.NoError(t, store.Create("demo", "src/lib/util.go", "package lib"))

	files, err := store.List(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/lib/util.go"}, files)
}

func TestWrite_ReplacesContent(t *testing.T) {
	store := newTestStore(t, "demo")
	require.NoError(t, store.Write("demo", "notes/todo.md", "one"))
	require.NoError(t, store.Write("demo", "notes/todo.md", "two"))

	content, err := store.Read("demo", "notes/todo.md")
	require.NoError(t, err)
	assert.Equal(t, "two", content)
}

func TestReadDelete_Missing(t *testing.T) {
	store := newTestStore(t, "demo")

	_, err := store.Read("demo", "nope.txt")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	err = store.Delete("demo", "nope.txt")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDelete_RefusesDirectory(t *testing.T) {
	store := newTestStore(t, "demo")
	writeTestFile(t, store, "demo", "src/a.go", "")

	assert.ErrorIs(t, store.Delete("demo", "src"), errs.ErrInvalidInput)
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"a.txt", "a.txt", true},
		{"src//main.go", "src/main.go", true},
		{`src\main.go`, "src/main.go", true},
		{"./a.txt", "a.txt", true},
		{"../escape.txt", "", false},
		{"src/../../escape.txt", "", false},
		{"/etc/passwd", "", false},
		{"node_modules/x.js", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, err := CleanPath(tc.in)
		if tc.ok {
			assert.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, got, tc.in)
		} else {
			assert.Error(t, err, tc.in)
		}
	}
}
