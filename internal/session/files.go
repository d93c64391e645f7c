// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"path"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/diycursor/internal/errs"
	"github.com/jeranaias/diycursor/internal/workspace"
)

// FileStore is the file storage collaborator. Paths are relative to the
// project and forward-slash separated; the manager passes them in the
// canonical form of workspace.CleanPath, which is also the form List returns.
type FileStore interface {
	List(ctx context.Context, project string) ([]string, error)
	Read(project, path string) (string, error)
	Write(project, path, content string) error
	Create(project, path, content string) error
	Delete(project, path string) error
}

// errNoProject is returned by file operations before a project is open.
var errNoProject = errs.New(errs.KindInvalidInput, "no project is open")

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager holds the active project, a cached flat listing of its files
// and the current-file cursor. The listing is refreshed explicitly, never
// kept in sync automatically.
type FileManager struct {
	mu sync.Mutex

	store  FileStore
	logger *zap.Logger

	project string
	files   []string
	current string

	onProjectOpen func(project string)
}

// NewFileManager creates a manager with no project open.
func NewFileManager(store FileStore, logger *zap.Logger) *FileManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileManager{
		store:  store,
		logger: logger,
		files:  []string{},
	}
}

// OnProjectOpen registers a callback run after a project is opened.
func (m *FileManager) OnProjectOpen(fn func(project string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onProjectOpen = fn
}

// OpenProject lists project and, on success, makes it active with that
// listing and no current file. On failure the previous state is kept.
func (m *FileManager) OpenProject(ctx context.Context, project string) error {
	files, err := m.store.List(ctx, project)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.project = project
	m.files = files
	m.current = ""
	cb := m.onProjectOpen
	m.mu.Unlock()

	m.logger.Info("project opened", zap.String("project", project), zap.Int("files", len(files)))
	if cb != nil {
		cb(project)
	}
	return nil
}

// Project returns the active project name, or "" when none is open.
func (m *FileManager) Project() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.project
}

// Files returns a copy of the cached listing.
func (m *FileManager) Files() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.files))
	copy(out, m.files)
	return out
}

// Current returns the current-file cursor, or "" when unset.
func (m *FileManager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Refresh re-lists the active project. The cached listing is replaced only
// after the new one has been fully obtained; on error it is left intact.
func (m *FileManager) Refresh(ctx context.Context) error {
	project := m.Project()
	if project == "" {
		return errNoProject
	}

	files, err := m.store.List(ctx, project)
	if err != nil {
		m.logger.Warn("refresh failed", zap.String("project", project), zap.Error(err))
		return err
	}

	m.mu.Lock()
	// A project switch during the listing wins.
	if m.project == project {
		m.files = files
	}
	m.mu.Unlock()
	return nil
}

// SelectFile sets the current-file cursor; "" clears it. The path is
// canonicalized but not checked against the cached listing.
func (m *FileManager) SelectFile(p string) {
	if clean, err := workspace.CleanPath(p); err == nil {
		p = clean
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = p
}

// CreateFile creates p with content, failing with AlreadyExists without
// touching an existing file, then refreshes and selects p.
func (m *FileManager) CreateFile(ctx context.Context, p, content string) error {
	project := m.Project()
	if project == "" {
		return errNoProject
	}
	p, err := workspace.CleanPath(p)
	if err != nil {
		return err
	}
	if err := m.store.Create(project, p, content); err != nil {
		return err
	}
	if err := m.Refresh(ctx); err != nil {
		return err
	}
	m.SelectFile(p)
	return nil
}

// ReadFile returns the content of p in the active project.
func (m *FileManager) ReadFile(p string) (string, error) {
	project := m.Project()
	if project == "" {
		return "", errNoProject
	}
	return m.store.Read(project, p)
}

// WriteFile replaces the content of p. The listing is not refreshed.
func (m *FileManager) WriteFile(p, content string) error {
	project := m.Project()
	if project == "" {
		return errNoProject
	}
	return m.store.Write(project, p, content)
}

// DeleteFile removes p, refreshes, and clears the cursor if it pointed at p.
// Equivalent spellings such as "./a.txt" and "a.txt" name the same file.
func (m *FileManager) DeleteFile(ctx context.Context, p string) error {
	project := m.Project()
	if project == "" {
		return errNoProject
	}
	p, err := workspace.CleanPath(p)
	if err != nil {
		return err
	}
	if err := m.store.Delete(project, p); err != nil {
		return err
	}

	m.mu.Lock()
	if m.current == p {
		m.current = ""
	}
	m.mu.Unlock()

	return m.Refresh(ctx)
}

// =============================================================================
// TREE VIEW
// =============================================================================

// DirGroup is one directory of the presentation tree with its direct files.
type DirGroup struct {
	Dir   string   // "" for the project root
	Files []string // base names, sorted
}

// Tree groups the cached listing by directory. Groups are sorted by
// directory with the root first.
func (m *FileManager) Tree() []DirGroup {
	return GroupByDir(m.Files())
}

// GroupByDir groups forward-slash paths by their parent directory.
func GroupByDir(paths []string) []DirGroup {
	byDir := make(map[string][]string)
	for _, p := range paths {
		dir, base := path.Split(p)
		dir = path.Clean(dir)
		if dir == "." {
			dir = ""
		}
		byDir[dir] = append(byDir[dir], base)
	}

	dirs := make([]string, 0, len(byDir))
	for d := range byDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	groups := make([]DirGroup, 0, len(dirs))
	for _, d := range dirs {
		files := byDir[d]
		sort.Strings(files)
		groups = append(groups, DirGroup{Dir: d, Files: files})
	}
	return groups
}
