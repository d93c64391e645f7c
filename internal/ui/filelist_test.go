// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/diycursor/internal/ui/styles"
)

func TestTreeOrder(t *testing.T) {
	files := []string{"src/util/str.go", "README.md", "src/main.go", "go.mod"}
	want := []string{"README.md", "go.mod", "src/main.go", "src/util/str.go"}
	if diff := cmp.Diff(want, treeOrder(files)); diff != "" {
		t.Errorf("treeOrder mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterFiles(t *testing.T) {
	files := []string{"README.md", "src/main.go", "src/model.go", "docs/intro.md"}

	got, matches := filterFiles(files, "mgo")
	assert.Equal(t, []string{"src/main.go", "src/model.go"}, sortedCopy(got))
	assert.NotEmpty(t, matches["src/main.go"])

	got, _ = filterFiles(files, "zzz")
	assert.Empty(t, got)
}

func TestFileList_CursorSurvivesRefresh(t *testing.T) {
	l := newFileList()
	l.SetFiles([]string{"a.txt", "b.txt", "c.txt"})
	l.SelectPath("b.txt")

	l.SetFiles([]string{"a.txt", "aa.txt", "b.txt", "c.txt"})
	assert.Equal(t, "b.txt", l.Selected())

	l.SetFiles([]string{"a.txt"})
	assert.Equal(t, "a.txt", l.Selected())

	l.SetFiles(nil)
	assert.Equal(t, "", l.Selected())
}

func TestFileList_Filter(t *testing.T) {
	l := newFileList()
	l.SetFiles([]string{"README.md", "src/app.js", "src/index.js"})

	l.StartFilter()
	l.filter.SetValue("idx")
	l.apply()
	assert.Equal(t, "src/index.js", l.Selected())

	l.StopFilter()
	assert.Equal(t, "src/index.js", l.Selected())
	assert.Len(t, l.visible, 3)
}

func TestFileList_View(t *testing.T) {
	theme := styles.NewTheme()
	l := newFileList()
	l.SetFiles([]string{"README.md", "src/main.go"})

	out := l.View(theme, 30, 10, "src/main.go")
	assert.Contains(t, out, "README.md")
	assert.Contains(t, out, "src/")
	assert.Contains(t, out, "* ")

	empty := newFileList()
	assert.Contains(t, empty.View(theme, 30, 10, ""), "(no files)")
}

func TestWindow(t *testing.T) {
	rows := []string{"0", "1", "2", "3", "4", "5"}
	assert.Equal(t, rows, window(rows, 0, 10))
	assert.Equal(t, []string{"0", "1", "2"}, window(rows, 0, 3))
	assert.Equal(t, []string{"3", "4", "5"}, window(rows, 5, 3))
	assert.Equal(t, []string{"1", "2", "3"}, window(rows, 2, 3))
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
