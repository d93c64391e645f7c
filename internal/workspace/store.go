// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeranaias/diycursor/internal/errs"
	"github.com/jeranaias/diycursor/internal/util"
)

// ReservedDirs are skipped when listing and refused as path components.
var ReservedDirs = []string{"node_modules", ".git"}

// IsReserved reports whether name is a reserved directory name.
func IsReserved(name string) bool {
	for _, r := range ReservedDirs {
		if name == r {
			return true
		}
	}
	return false
}

// =============================================================================
// STORE
// =============================================================================

// Store is the on-disk file storage for all projects under a root.
// It holds no state besides the root and is safe for concurrent use.
type Store struct {
	root string
}

// NewStore creates a store rooted at root. The directory is not created
// until EnsureRoot is called.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the projects directory.
func (s *Store) Root() string {
	return s.root
}

// EnsureRoot creates the projects directory if needed.
func (s *Store) EnsureRoot() error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return errs.Wrap(errs.KindStorage, "failed to create projects directory", err)
	}
	return nil
}

// ValidateProjectName checks that name is usable as a single directory name.
func ValidateProjectName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errs.New(errs.KindInvalidInput, "project name is required")
	case name != strings.TrimSpace(name):
		return errs.New(errs.KindInvalidInput, "project name has leading or trailing spaces")
	case name == "." || name == "..":
		return errs.New(errs.KindInvalidInput, "invalid project name: "+name)
	case strings.ContainsAny(name, `/\`):
		return errs.New(errs.KindInvalidInput, "project name must not contain path separators: "+name)
	case IsReserved(name):
		return errs.New(errs.KindInvalidInput, "reserved project name: "+name)
	}
	return nil
}

// ProjectDir returns the absolute directory of a project.
func (s *Store) ProjectDir(project string) (string, error) {
	if err := ValidateProjectName(project); err != nil {
		return "", err
	}
	return filepath.Join(s.root, project), nil
}

// ProjectExists reports whether a project directory exists.
func (s *Store) ProjectExists(project string) bool {
	dir, err := s.ProjectDir(project)
	if err != nil {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// CreateProject makes a new, empty project directory and returns its path.
// It fails with AlreadyExists rather than reusing an existing directory.
func (s *Store) CreateProject(project string) (string, error) {
	dir, err := s.ProjectDir(project)
	if err != nil {
		return "", err
	}
	if err := s.EnsureRoot(); err != nil {
		return "", err
	}
	if err := os.Mkdir(dir, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", errs.New(errs.KindAlreadyExists, "Project directory already exists: "+project)
		}
		return "", classify("failed to create project "+project, err)
	}
	return dir, nil
}

// RemoveProject deletes a project directory and everything in it.
func (s *Store) RemoveProject(project string) error {
	dir, err := s.ProjectDir(project)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return classify("failed to remove project "+project, err)
	}
	return nil
}

// Projects returns the project names in sorted order.
func (s *Store) Projects() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, errs.Wrap(errs.KindStorage, "failed to read projects", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// =============================================================================
// FILE OPERATIONS
// =============================================================================

// List walks a project and returns every file path, relative and
// forward-slash separated, sorted. Reserved directories are skipped.
func (s *Store) List(ctx context.Context, project string) ([]string, error) {
	dir, err := s.ProjectDir(project)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, errs.Wrap(errs.KindNotFound, "project not found: "+project, err)
	}

	files := []string{}
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if p != dir && IsReserved(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, classify("failed to list project "+project, err)
	}

	sort.Strings(files)
	return files, nil
}

// Read returns the content of a file.
func (s *Store) Read(project, relPath string) (string, error) {
	full, err := s.resolve(project, relPath)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", classify("failed to read file: "+relPath, err)
	}
	return string(data), nil
}

// Write replaces the content of a file, creating it and its parent
// directories when missing.
func (s *Store) Write(project, relPath, content string) error {
	full, err := s.resolve(project, relPath)
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(full, []byte(content), 0644); err != nil {
		return classify("failed to write file: "+relPath, err)
	}
	return nil
}

// Create writes a new file and fails with AlreadyExists, leaving the existing
// content untouched, when the path is taken.
func (s *Store) Create(project, relPath, content string) error {
	full, err := s.resolve(project, relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return classify("failed to create file: "+relPath, err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return errs.New(errs.KindAlreadyExists, "file already exists: "+relPath)
		}
		return classify("failed to create file: "+relPath, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return classify("failed to create file: "+relPath, err)
	}
	if err := f.Close(); err != nil {
		return classify("failed to create file: "+relPath, err)
	}
	return nil
}

// Delete removes a file.
func (s *Store) Delete(project, relPath string) error {
	full, err := s.resolve(project, relPath)
	if err != nil {
		return err
	}
	info, err := os.Lstat(full)
	if err != nil {
		return classify("failed to delete file: "+relPath, err)
	}
	if info.IsDir() {
		return errs.New(errs.KindInvalidInput, "not a file: "+relPath)
	}
	if err := os.Remove(full); err != nil {
		return classify("failed to delete file: "+relPath, err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// CleanPath normalizes a relative file path to forward slashes and rejects
// paths that escape the project or touch a reserved directory.
func CleanPath(relPath string) (string, error) {
	p := strings.TrimSpace(strings.ReplaceAll(relPath, `\`, "/"))
	if p == "" {
		return "", errs.New(errs.KindInvalidInput, "file path is required")
	}
	p = path.Clean(p)
	if !filepath.IsLocal(filepath.FromSlash(p)) || strings.HasPrefix(p, "/") {
		return "", errs.New(errs.KindInvalidInput, "path escapes project: "+relPath)
	}
	for _, part := range strings.Split(p, "/") {
		if IsReserved(part) {
			return "", errs.New(errs.KindInvalidInput, "reserved path: "+relPath)
		}
	}
	return p, nil
}

func (s *Store) resolve(project, relPath string) (string, error) {
	dir, err := s.ProjectDir(project)
	if err != nil {
		return "", err
	}
	p, err := CleanPath(relPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.FromSlash(p)), nil
}

// classify maps filesystem errors onto the storage taxonomy.
func classify(msg string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return errs.Wrap(errs.KindNotFound, msg, err)
	case errors.Is(err, fs.ErrExist):
		return errs.Wrap(errs.KindAlreadyExists, msg, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return errs.Wrap(errs.KindStorage, msg, err)
	}
}
