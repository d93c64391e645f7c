// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"path"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/sahilm/fuzzy"

	"github.com/jeranaias/diycursor/internal/session"
	"github.com/jeranaias/diycursor/internal/ui/styles"
	"github.com/jeranaias/diycursor/internal/util"
)

// fileList shows the cached project listing as a directory tree, or as a
// ranked list while a fuzzy filter is active.
type fileList struct {
	files   []string
	visible []string
	matches map[string][]int
	cursor  int

	filter    textinput.Model
	filtering bool
}

func newFileList() fileList {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter files"
	return fileList{filter: ti}
}

// SetFiles replaces the listing, keeping the cursor on the same path when it
// still exists.
func (l *fileList) SetFiles(files []string) {
	selected := l.Selected()
	l.files = files
	l.apply()
	if selected != "" {
		l.SelectPath(selected)
	}
}

// apply recomputes the visible rows from the listing and the filter.
func (l *fileList) apply() {
	query := strings.TrimSpace(l.filter.Value())
	if !l.filtering || query == "" {
		l.visible = treeOrder(l.files)
		l.matches = nil
	} else {
		l.visible, l.matches = filterFiles(l.files, query)
	}
	l.clamp()
}

func (l *fileList) clamp() {
	if l.cursor >= len(l.visible) {
		l.cursor = len(l.visible) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

// Selected returns the path under the cursor, or "".
func (l fileList) Selected() string {
	if len(l.visible) == 0 {
		return ""
	}
	return l.visible[l.cursor]
}

// SelectPath moves the cursor to p if it is visible.
func (l *fileList) SelectPath(p string) {
	for i, v := range l.visible {
		if v == p {
			l.cursor = i
			return
		}
	}
}

// Move shifts the cursor by delta rows.
func (l *fileList) Move(delta int) {
	l.cursor += delta
	l.clamp()
}

// StartFilter focuses the filter input.
func (l *fileList) StartFilter() {
	l.filtering = true
	l.filter.SetValue("")
	l.filter.Focus()
	l.apply()
}

// StopFilter leaves filter mode and restores the tree.
func (l *fileList) StopFilter() {
	selected := l.Selected()
	l.filtering = false
	l.filter.Blur()
	l.filter.SetValue("")
	l.apply()
	l.SelectPath(selected)
}

// treeOrder flattens the listing in the order the tree is drawn.
func treeOrder(files []string) []string {
	out := make([]string, 0, len(files))
	for _, g := range session.GroupByDir(files) {
		for _, f := range g.Files {
			out = append(out, path.Join(g.Dir, f))
		}
	}
	return out
}

// filterFiles ranks files against query and returns the matched character
// positions of each result.
func filterFiles(files []string, query string) ([]string, map[string][]int) {
	results := fuzzy.Find(query, files)
	out := make([]string, 0, len(results))
	matches := make(map[string][]int, len(results))
	for _, r := range results {
		out = append(out, r.Str)
		matches[r.Str] = r.MatchedIndexes
	}
	return out, matches
}

// =============================================================================
// VIEW
// =============================================================================

// View renders at most height rows of width columns. current marks the file
// open in the editor.
func (l fileList) View(theme *styles.Theme, width, height int, current string) string {
	var lines []string
	if l.filtering {
		lines = append(lines, l.filter.View())
		height--
	}
	if len(l.files) == 0 {
		lines = append(lines, theme.Muted.Render("(no files)"))
		return strings.Join(lines, "\n")
	}

	var rows []string
	cursorRow := 0
	if l.filtering {
		for i, p := range l.visible {
			if i == l.cursor {
				cursorRow = len(rows)
			}
			label := highlightMatches(theme, util.TruncateWidth(p, width-2), l.matches[p])
			rows = append(rows, l.row(theme, label, i == l.cursor, p == current, width))
		}
		if len(l.visible) == 0 {
			rows = append(rows, theme.Muted.Render("(no matches)"))
		}
	} else {
		i := 0
		for _, g := range session.GroupByDir(l.files) {
			indent := ""
			if g.Dir != "" {
				rows = append(rows, theme.ListDir.Render(util.TruncateWidth(g.Dir+"/", width)))
				indent = "  "
			}
			for _, f := range g.Files {
				p := path.Join(g.Dir, f)
				if i == l.cursor {
					cursorRow = len(rows)
				}
				label := util.TruncateWidth(indent+f, width-2)
				rows = append(rows, l.row(theme, label, i == l.cursor, p == current, width))
				i++
			}
		}
	}

	lines = append(lines, window(rows, cursorRow, height)...)
	return strings.Join(lines, "\n")
}

// row renders one entry; label is already truncated to width-2.
func (l fileList) row(theme *styles.Theme, label string, selected, open bool, width int) string {
	marker := "  "
	if open {
		marker = "* "
	}
	if selected {
		return theme.ListSelected.Width(width).Render(marker + label)
	}
	return theme.ListItem.Render(marker + label)
}

// highlightMatches styles the fuzzy-matched characters of s.
func highlightMatches(theme *styles.Theme, s string, idx []int) string {
	if len(idx) == 0 {
		return s
	}
	hit := make(map[int]bool, len(idx))
	for _, i := range idx {
		hit[i] = true
	}
	var sb strings.Builder
	for i, r := range s {
		if hit[i] {
			sb.WriteString(theme.ListMatch.Render(string(r)))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// window returns up to height rows keeping the cursor row visible.
func window(rows []string, cursor, height int) []string {
	if height <= 0 || len(rows) <= height {
		return rows
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > len(rows) {
		start = len(rows) - height
	}
	return rows[start : start+height]
}
