// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jeranaias/diycursor/internal/util"
)

// DefaultWatchDebounce is the quiet period before a batch of changes is sent.
const DefaultWatchDebounce = 200 * time.Millisecond

// Watcher reports files created, removed or renamed inside one project, so
// the cached listing can be refreshed after external changes. Plain writes
// are ignored since they cannot change the listing.
type Watcher struct {
	root     string
	debounce time.Duration
	logger   *zap.Logger

	watcher *fsnotify.Watcher
	changes chan []string
	done    chan struct{}
	wg      sync.WaitGroup

	closeOnce sync.Once
}

// NewWatcher creates a watcher for the project directory dir.
func NewWatcher(dir string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		root:     dir,
		debounce: debounce,
		logger:   logger,
		watcher:  fw,
		changes:  make(chan []string, 1),
		done:     make(chan struct{}),
	}, nil
}

// Changes delivers batches of changed paths relative to the project root.
// The channel is closed by Close.
func (w *Watcher) Changes() <-chan []string {
	return w.changes
}

// Start adds the project tree to the watch list and begins delivering
// changes.
func (w *Watcher) Start() error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	w.wg.Add(1)
	go w.processEvents()
	return nil
}

// Close stops watching and waits for the event goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
		close(w.changes)
	})
	return err
}

// addRecursive adds a directory and all its subdirectories to the watch list
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && IsReserved(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			w.logger.Debug("watch add failed", zap.String("dir", p), zap.Error(err))
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	pending := make(map[string]struct{})
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			rel, relevant := w.relevant(event)
			if !relevant {
				continue
			}
			if event.Has(fsnotify.Create) {
				// New directories need their own watches.
				w.addRecursive(event.Name)
			}
			pending[rel] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			pending = make(map[string]struct{})

			select {
			case w.changes <- batch:
			case <-w.done:
				return
			}
		}
	}
}

// relevant filters events down to listing changes outside reserved dirs and
// atomic-write temp files.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || rel == "." {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if IsReserved(part) {
			return "", false
		}
	}
	if strings.HasPrefix(filepath.Base(event.Name), util.TempPrefix) {
		return "", false
	}
	return rel, true
}
