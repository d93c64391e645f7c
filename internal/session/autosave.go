// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"
)

// DefaultAutosaveDelay is the quiet period after the last edit before the
// editor content is written.
const DefaultAutosaveDelay = time.Second

// WriteFunc persists content to path inside project.
type WriteFunc func(project, path, content string) error

type pendingWrite struct {
	project string
	path    string
	content string
	gen     uint64
}

// =============================================================================
// AUTOSAVER
// =============================================================================

// Autosaver debounces editor writes through a single pending-write slot.
// Scheduling a write cancels the one already pending, so only the latest
// content reaches storage; continuous edits may never be written until
// they pause.
type Autosaver struct {
	mu      sync.Mutex
	writeMu sync.Mutex // serializes writes so a stale one never lands last

	delay   time.Duration
	write   WriteFunc
	timer   *time.Timer
	pending *pendingWrite
	gen     uint64

	onSaved func(path string)
	onError func(path string, err error)
}

// NewAutosaver creates an autosaver that calls write after delay of quiet.
func NewAutosaver(delay time.Duration, write WriteFunc) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Autosaver{delay: delay, write: write}
}

// OnSaved registers a callback run after each successful timed write.
func (a *Autosaver) OnSaved(fn func(path string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onSaved = fn
}

// OnError registers a callback for failed timed writes.
func (a *Autosaver) OnError(fn func(path string, err error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onError = fn
}

// Delay returns the quiet period.
func (a *Autosaver) Delay() time.Duration {
	return a.delay
}

// Schedule replaces any pending write with content for path, due after the
// quiet period. The write goes to project even if another project is opened
// before it lands.
func (a *Autosaver) Schedule(project, path, content string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancelLocked()
	a.gen++
	gen := a.gen
	a.pending = &pendingWrite{project: project, path: path, content: content, gen: gen}
	a.timer = time.AfterFunc(a.delay, func() { a.fire(gen) })
}

// Pending reports whether a write is waiting for its timer.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// Flush writes the pending content now, if any.
func (a *Autosaver) Flush() error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	p := a.pending
	a.cancelLocked()
	a.mu.Unlock()

	if p == nil {
		return nil
	}
	return a.write(p.project, p.path, p.content)
}

// Stop discards the pending write without writing it.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelLocked()
}

// cancelLocked stops the timer and empties the slot. A timer that already
// fired sees a generation mismatch and does nothing.
func (a *Autosaver) cancelLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = nil
	a.gen++
}

func (a *Autosaver) fire(gen uint64) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	p := a.pending
	if p == nil || p.gen != gen {
		a.mu.Unlock()
		return
	}
	a.pending = nil
	a.timer = nil
	onSaved, onError := a.onSaved, a.onError
	a.mu.Unlock()

	if err := a.write(p.project, p.path, p.content); err != nil {
		if onError != nil {
			onError(p.path, err)
		}
		return
	}
	if onSaved != nil {
		onSaved(p.path)
	}
}
