// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type writeRecord struct {
	project string
	path    string
	content string
	at      time.Duration
}

type recorder struct {
	mu     sync.Mutex
	start  time.Time
	writes []writeRecord
	err    error
}

func newRecorder() *recorder {
	return &recorder{start: time.Now()}
}

func (r *recorder) write(project, path, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, writeRecord{project: project, path: path, content: content, at: time.Since(r.start)})
	return r.err
}

func (r *recorder) snapshot() []writeRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]writeRecord(nil), r.writes...)
}

func TestAutosaver_CoalescesEdits(t *testing.T) {
	const unit = 100 * time.Millisecond
	rec := newRecorder()
	a := NewAutosaver(unit, rec.write)
	defer a.Stop()

	// Edits at 0, 0.3 and 0.6 of the quiet period.
	a.Schedule("demo", "a.txt", "v1")
	time.Sleep(unit * 3 / 10)
	a.Schedule("demo", "a.txt", "v2")
	time.Sleep(unit * 3 / 10)
	a.Schedule("demo", "a.txt", "v3")

	time.Sleep(unit * 4)

	writes := rec.snapshot()
	require.Len(t, writes, 1, "only one write should occur")
	assert.Equal(t, "v3", writes[0].content)
	assert.GreaterOrEqual(t, writes[0].at, unit*16/10-5*time.Millisecond)
}

func TestAutosaver_FlushWritesImmediately(t *testing.T) {
	rec := newRecorder()
	a := NewAutosaver(time.Hour, rec.write)

	a.Schedule("demo", "a.txt", "draft")
	assert.True(t, a.Pending())

	require.NoError(t, a.Flush())
	assert.False(t, a.Pending())

	writes := rec.snapshot()
	require.Len(t, writes, 1)
	assert.Equal(t, "draft", writes[0].content)

	require.NoError(t, a.Flush(), "flush with nothing pending is a no-op")
	assert.Len(t, rec.snapshot(), 1)
}

func TestAutosaver_StopDiscards(t *testing.T) {
	rec := newRecorder()
	a := NewAutosaver(20*time.Millisecond, rec.write)

	a.Schedule("demo", "a.txt", "draft")
	a.Stop()
	time.Sleep(80 * time.Millisecond)

	assert.Empty(t, rec.snapshot())
	assert.False(t, a.Pending())
}

func TestAutosaver_Callbacks(t *testing.T) {
	rec := newRecorder()
	a := NewAutosaver(10*time.Millisecond, rec.write)

	saved := make(chan string, 1)
	failed := make(chan error, 1)
	a.OnSaved(func(path string) { saved <- path })
	a.OnError(func(path string, err error) { failed <- err })

	a.Schedule("demo", "a.txt", "ok")
	select {
	case p := <-saved:
		assert.Equal(t, "a.txt", p)
	case <-time.After(2 * time.Second):
		t.Fatal("no save callback")
	}

	rec.mu.Lock()
	rec.err = errors.New("disk full")
	rec.mu.Unlock()

	a.Schedule("demo", "a.txt", "fails")
	select {
	case err := <-failed:
		assert.EqualError(t, err, "disk full")
	case <-time.After(2 * time.Second):
		t.Fatal("no error callback")
	}
}

func TestAutosaver_WritesToScheduledProject(t *testing.T) {
	rec := newRecorder()
	a := NewAutosaver(time.Hour, rec.write)

	a.Schedule("demo", "README.md", "draft")
	a.Schedule("other", "README.md", "second")
	require.NoError(t, a.Flush())

	writes := rec.snapshot()
	require.Len(t, writes, 1)
	assert.Equal(t, "other", writes[0].project)
	assert.Equal(t, "second", writes[0].content)

	a.Schedule("demo", "README.md", "late")
	require.NoError(t, a.Flush())
	assert.Equal(t, "demo", rec.snapshot()[1].project)
}

func TestAutosaver_DefaultDelay(t *testing.T) {
	a := NewAutosaver(0, func(string, string, string) error { return nil })
	assert.Equal(t, DefaultAutosaveDelay, a.Delay())
}
