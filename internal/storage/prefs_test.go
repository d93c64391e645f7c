// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestPrefs(t *testing.T) *Prefs {
	t.Helper()
	prefs, err := OpenPrefs(filepath.Join(t.TempDir(), "nested", "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { prefs.Close() })
	return prefs
}

func TestPrefs_GetMissing(t *testing.T) {
	prefs := openTestPrefs(t)

	value, ok, err := prefs.Get(KeyLastModel)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestPrefs_SetOverwrites(t *testing.T) {
	prefs := openTestPrefs(t)

	require.NoError(t, prefs.Set(KeyLastProject, "alpha"))
	require.NoError(t, prefs.Set(KeyLastProject, "beta"))

	value, ok, err := prefs.Get(KeyLastProject)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "beta", value)
}

func TestPrefs_FilesArePrivate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dir := filepath.Join(t.TempDir(), "state")
	path := filepath.Join(dir, "state.db")

	prefs, err := OpenPrefs(path)
	require.NoError(t, err)
	defer prefs.Close()
	require.NoError(t, prefs.Set(KeyModelAPIKeys, `{"openai":"sk-test"}`))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())

	for _, name := range []string{path, path + "-wal", path + "-shm"} {
		info, err := os.Stat(name)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		require.NoError(t, err)
		assert.Zero(t, info.Mode().Perm()&0077, "%s is readable by others", filepath.Base(name))
	}
}

func TestPrefs_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	prefs, err := OpenPrefs(path)
	require.NoError(t, err)
	require.NoError(t, prefs.Set(KeyLastModel, `{"type":"local","name":"llama3.2"}`))
	require.NoError(t, prefs.Close())

	reopened, err := OpenPrefs(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get(KeyLastModel)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"type":"local","name":"llama3.2"}`, value)
}

func TestPrefs_DeleteAndKeys(t *testing.T) {
	prefs := openTestPrefs(t)

	require.NoError(t, prefs.Set("b", "2"))
	require.NoError(t, prefs.Set("a", "1"))
	require.NoError(t, prefs.Delete("b"))
	require.NoError(t, prefs.Delete("missing"))

	keys, err := prefs.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, keys)
}

func TestPrefs_JSON(t *testing.T) {
	prefs := openTestPrefs(t)

	in := map[string]string{"anthropic": "sk-ant", "openai": ""}
	require.NoError(t, prefs.SetJSON(KeyModelAPIKeys, in))

	var out map[string]string
	ok, err := prefs.GetJSON(KeyModelAPIKeys, &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, out)

	require.NoError(t, prefs.Set(KeyModelAPIKeys, "{not json"))
	ok, err = prefs.GetJSON(KeyModelAPIKeys, &out)
	assert.True(t, ok)
	assert.Error(t, err)

	ok, err = prefs.GetJSON("absent", &out)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestPrefs_ConcurrentWrites(t *testing.T) {
	prefs := openTestPrefs(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, prefs.Set(KeyLastProject, "p"))
		}()
	}
	wg.Wait()

	value, _, err := prefs.Get(KeyLastProject)
	require.NoError(t, err)
	assert.Equal(t, "p", value)
}
