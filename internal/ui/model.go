// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/diycursor/internal/assistant"
	"github.com/jeranaias/diycursor/internal/commands"
	"github.com/jeranaias/diycursor/internal/model"
	"github.com/jeranaias/diycursor/internal/project"
	"github.com/jeranaias/diycursor/internal/router"
	"github.com/jeranaias/diycursor/internal/session"
	"github.com/jeranaias/diycursor/internal/terminal"
	"github.com/jeranaias/diycursor/internal/ui/styles"
	"github.com/jeranaias/diycursor/internal/workspace"
)

// Focus identifies the pane receiving keys.
type Focus int

const (
	FocusPicker Focus = iota
	FocusFiles
	FocusEditor
	FocusAssistant
	FocusTerminal
)

// paneOrder is the Tab cycle once a project is open.
var paneOrder = []Focus{FocusFiles, FocusEditor, FocusAssistant, FocusTerminal}

// Deps wires the model to the session layer.
type Deps struct {
	Store      *workspace.Store
	Scaffolder *project.Scaffolder
	Models     *session.ModelManager
	Files      *session.FileManager
	Assistant  *assistant.Controller
	Registry   *commands.Registry
	Shell      *terminal.Shell
	Logger     *zap.Logger

	AutosaveDelay time.Duration
	WatchDebounce time.Duration

	// InitialProject is opened at start when set.
	InitialProject string
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the workspace screen.
type Model struct {
	deps   Deps
	ctx    context.Context
	theme  *styles.Theme
	keys   KeyMap
	help   help.Model
	logger *zap.Logger

	width  int
	height int
	focus  Focus

	picker    pickerModel
	files     fileList
	editor    editorPane
	assistant assistantPane
	term      terminalPane
	cmdline   cmdLine

	autosaver *session.Autosaver
	watcher   *workspace.Watcher
	events    chan tea.Msg

	status        string
	statusErr     bool
	helpText      string
	showFullHelp  bool
	confirmClear  bool
	changedOnDisk bool
	awaiting      bool
	quitting      bool
}

// New creates the workspace model. ctx bounds every background operation.
func New(ctx context.Context, deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Shell == nil {
		deps.Shell = terminal.NewShell()
	}
	if deps.Registry == nil {
		deps.Registry = commands.NewRegistry()
	}

	events := make(chan tea.Msg, 16)
	files := deps.Files
	store := deps.Store
	saver := session.NewAutosaver(deps.AutosaveDelay, func(project, path, content string) error {
		return store.Write(project, path, content)
	})
	saver.OnSaved(func(path string) { post(events, SavedMsg{Path: path}) })
	saver.OnError(func(path string, err error) { post(events, SaveErrorMsg{Path: path, Err: err}) })

	completer := commands.NewCompleter(deps.Registry)
	completer.FilesFn = files.Files
	completer.ProjectsFn = func() []string {
		names, _ := deps.Store.Projects()
		return names
	}
	completer.ModelsFn = func() []string {
		return modelIDs(ctx, deps.Models)
	}

	var templates []project.TemplateInfo
	if deps.Scaffolder != nil {
		templates = deps.Scaffolder.Templates()
	}

	return Model{
		deps:      deps,
		ctx:       ctx,
		theme:     styles.NewTheme(),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		logger:    logger,
		focus:     FocusPicker,
		picker:    newPicker(templates),
		files:     newFileList(),
		editor:    newEditorPane(),
		assistant: newAssistantPane(),
		term:      newTerminalPane(deps.Shell),
		cmdline:   newCmdLine(completer),
		autosaver: saver,
		events:    events,
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(New(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Focus returns the focused pane.
func (m Model) Focus() Focus {
	return m.focus
}

// Status returns the status line text and whether it is an error.
func (m Model) Status() (string, bool) {
	return m.status, m.statusErr
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init loads the project list and opens the initial project.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		LoadProjectsCmd(m.deps.Store),
		waitForEvent(m.events),
	}
	if m.deps.InitialProject != "" {
		cmds = append(cmds, OpenProjectCmd(m.ctx, m.deps.Files, m.deps.InitialProject))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ProjectsLoadedMsg:
		if msg.Err != nil {
			m.setError(msg.Err)
			return m, nil
		}
		m.picker.SetProjects(msg.Names, m.deps.Files.Project())
		return m, nil

	case ProjectCreatedMsg:
		m.picker.busy = false
		m.setInfo("Created project " + msg.Name)
		return m, tea.Batch(
			LoadProjectsCmd(m.deps.Store),
			OpenProjectCmd(m.ctx, m.deps.Files, msg.Name),
		)

	case commands.ProjectOpenedMsg:
		return m.handleProjectOpened(msg)

	case commands.FilesChangedMsg:
		return m.handleFilesChanged(msg)

	case FileLoadedMsg:
		// A read that raced a project switch belongs to the old project.
		if msg.Project != m.deps.Files.Project() {
			return m, nil
		}
		m.editor.Load(msg.Project, msg.Path, msg.Content)
		m.deps.Files.SelectFile(msg.Path)
		m.files.SelectPath(msg.Path)
		return m, nil

	case SavedMsg:
		m.editor.Saved(msg.Path, m.autosaver.Pending())
		return m, waitForEvent(m.events)

	case SaveErrorMsg:
		m.setError(msg.Err)
		return m, waitForEvent(m.events)

	case DiskChangedMsg:
		if !m.listingMatches(msg.Paths) {
			m.changedOnDisk = true
			m.setInfo("Files changed on disk. Run :refresh to update the list.")
		}
		return m, waitForChanges(m.watcher)

	case AssistantDoneMsg:
		m.awaiting = false
		if msg.Err != nil {
			m.setError(msg.Err)
		}
		m.renderAssistant()
		return m, nil

	case commands.ModelLoadedMsg:
		m.setInfo("Loaded " + msg.Config.Model + " (" + msg.Config.Backend.DisplayName() + ")")
		return m, nil

	case commands.SystemMessageMsg:
		m.setInfo(msg.Content)
		return m, nil

	case commands.ShowHelpMsg:
		m.helpText = msg.Content
		return m, nil

	case commands.ErrorMsg:
		m.picker.busy = false
		m.setError(msg.Err)
		return m, nil

	case commands.ConfirmClearMsg:
		m.confirmClear = true
		m.setInfo("Clear the conversation? (y/n)")
		return m, nil

	case commands.CopyToClipboardMsg:
		return m, CopyCmd(msg.Content)

	case commands.QuitMsg:
		return m.shutdown()

	case spinner.TickMsg:
		if !m.awaiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.assistant.spinner, cmd = m.assistant.spinner.Update(msg)
		m.renderAssistant()
		return m, cmd
	}

	return m, nil
}

// =============================================================================
// HANDLERS
// =============================================================================

func (m Model) handleProjectOpened(msg commands.ProjectOpenedMsg) (tea.Model, tea.Cmd) {
	if err := m.autosaver.Flush(); err != nil {
		m.setError(err)
	}
	m.editor.Close()
	m.files.StopFilter()
	m.files.SetFiles(m.deps.Files.Files())
	m.setFocus(FocusFiles)
	m.changedOnDisk = false
	m.helpText = ""
	m.setInfo("Opened " + msg.Project)
	m.picker.SetProjects(m.picker.projects, msg.Project)

	return m, m.watch(msg.Project)
}

// watch replaces the project watcher. Watch failures only disable the
// changed-on-disk notice.
func (m *Model) watch(name string) tea.Cmd {
	if m.watcher != nil {
		m.watcher.Close()
		m.watcher = nil
	}
	dir, err := m.deps.Store.ProjectDir(name)
	if err != nil {
		return nil
	}
	w, err := workspace.NewWatcher(dir, m.deps.WatchDebounce, m.logger)
	if err != nil {
		m.logger.Warn("file watcher unavailable", zap.Error(err))
		return nil
	}
	if err := w.Start(); err != nil {
		m.logger.Warn("file watcher unavailable", zap.Error(err))
		w.Close()
		return nil
	}
	m.watcher = w
	return waitForChanges(w)
}

// listingMatches reports whether the cached listing already reflects every
// path in a watcher batch. The session's own :new and :rm refresh the listing
// before the watcher reports them, so their echoes match.
func (m Model) listingMatches(paths []string) bool {
	dir, err := m.deps.Store.ProjectDir(m.deps.Files.Project())
	if err != nil {
		return false
	}
	files := m.deps.Files.Files()
	for _, p := range paths {
		listed := false
		for _, f := range files {
			if f == p || strings.HasPrefix(f, p+"/") {
				listed = true
				break
			}
		}
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(p)))
		switch {
		case err != nil:
			if listed {
				return false
			}
		case info.IsDir():
			// An empty directory never shows up in the listing.
		case !listed:
			return false
		}
	}
	return true
}

func (m Model) handleFilesChanged(msg commands.FilesChangedMsg) (tea.Model, tea.Cmd) {
	m.files.SetFiles(m.deps.Files.Files())
	m.changedOnDisk = false

	// The editor follows the file cursor; a deleted file is closed.
	if m.editor.path != "" && m.deps.Files.Current() == "" {
		m.autosaver.Stop()
		m.editor.Close()
	}
	if msg.Select != "" {
		if err := m.autosaver.Flush(); err != nil {
			m.setError(err)
		}
		m.files.SelectPath(msg.Select)
		m.setFocus(FocusEditor)
		return m, LoadFileCmd(m.deps.Files, msg.Select)
	}
	return m, nil
}

// openSelected loads the file under the cursor, writing any pending edit of
// the previous file first.
func (m Model) openSelected() (tea.Model, tea.Cmd) {
	p := m.files.Selected()
	if p == "" {
		return m, nil
	}
	if err := m.autosaver.Flush(); err != nil {
		m.setError(err)
	}
	m.files.StopFilter()
	m.setFocus(FocusEditor)
	return m, LoadFileCmd(m.deps.Files, p)
}

// submit sends the assistant input.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.assistant.input.Value()
	if text == "" || m.deps.Assistant.Busy() {
		return m, nil
	}
	m.assistant.input.Reset()
	m.awaiting = true

	// Spinner ticks redraw the conversation, so the user turn shows as soon
	// as Submit appends it.
	return m, tea.Batch(SubmitCmd(m.ctx, m.deps.Assistant, text), m.assistant.spinner.Tick)
}

// runCommand executes a ":" line.
func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	if line == "" || line == ":" {
		return m, nil
	}
	ctx := &commands.Context{
		Ctx:       m.ctx,
		Registry:  m.deps.Registry,
		Models:    m.deps.Models,
		Files:     m.deps.Files,
		Assistant: m.deps.Assistant,
	}
	return m, m.deps.Registry.Execute(ctx, line)
}

// shutdown writes pending edits, stops the watcher and quits.
func (m Model) shutdown() (tea.Model, tea.Cmd) {
	if err := m.autosaver.Flush(); err != nil {
		m.logger.Error("final save failed", zap.Error(err))
	}
	if m.watcher != nil {
		m.watcher.Close()
		m.watcher = nil
	}
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) setInfo(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m *Model) renderAssistant() {
	m.assistant.Render(m.theme, m.deps.Assistant.Turns(), m.awaiting)
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)
	m.help.Width = width

	l := m.layout()
	m.editor.SetSize(l.editorW, l.editorH)
	m.assistant.SetSize(l.assistantW, l.assistantH)
	m.term.SetSize(l.terminalW, l.terminalH)
	m.renderAssistant()
}

// modelIDs lists local and hosted model identifiers for completion. The
// catalog query is kept short since it runs on a keypress.
func modelIDs(ctx context.Context, models *session.ModelManager) []string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	ids := models.ListLocalModels(ctx)
	for _, b := range []router.Backend{router.BackendAnthropic, router.BackendOpenAI} {
		for _, info := range model.HostedModels(b) {
			ids = append(ids, info.ID)
		}
	}
	return ids
}
