// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/jeranaias/diycursor/internal/errs"
	"github.com/jeranaias/diycursor/internal/ui/styles"
)

// =============================================================================
// OUTPUT TARGET
// =============================================================================

const (
	fallbackWidth = 80
	minWrapWidth  = 40
)

// output describes the writer a command prints to. Anything that is not an
// *os.File, such as a test buffer, is treated as a pipe.
type output struct {
	tty   bool
	color bool
	width int
}

func detectOutput(w io.Writer) output {
	o := output{width: fallbackWidth}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return o
	}
	o.tty = true
	o.color = termenv.NewOutput(f).EnvColorProfile() != termenv.Ascii
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
		o.width = max(width, minWrapWidth)
	}
	return o
}

// wrapWidth is the column budget for rendered markdown.
func (o output) wrapWidth() int {
	return o.width - 4
}

// requireInteractive fails unless stdin and stdout are both terminals.
func requireInteractive() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errs.New(errs.KindInvalidInput,
			"the workspace UI needs an interactive terminal; use a subcommand such as 'diycursor ask' instead")
	}
	return nil
}

// =============================================================================
// STYLES
// =============================================================================

// useStdoutProfile makes lipgloss honor NO_COLOR and pipes on stdout.
func useStdoutProfile() {
	lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan)
	labelStyle   = lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(14)
	okStyle      = lipgloss.NewStyle().Bold(true).Foreground(styles.Emerald)
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(styles.Rose)
	mutedStyle   = lipgloss.NewStyle().Foreground(styles.TextMuted)
	markStyle    = lipgloss.NewStyle().Foreground(styles.Amber)
)

// label pads s to the label column.
func label(s string) string {
	return labelStyle.Render(s)
}

// done renders a one-line success message such as "Created demo".
func done(verb string, rest ...string) string {
	return okStyle.Render(verb) + " " + strings.Join(rest, " ")
}
