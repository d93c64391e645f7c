// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/diycursor/internal/assistant"
	"github.com/jeranaias/diycursor/internal/errs"
	"github.com/jeranaias/diycursor/internal/model"
	"github.com/jeranaias/diycursor/internal/router"
	"github.com/jeranaias/diycursor/internal/session"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Context gives handlers access to the session state.
type Context struct {
	Ctx       context.Context
	Registry  *Registry
	Models    *session.ModelManager
	Files     *session.FileManager
	Assistant *assistant.Controller
}

func (c *Context) context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// SystemMessageMsg carries informational text for the status area.
type SystemMessageMsg struct {
	Content string
}

// ErrorMsg reports a failed command.
type ErrorMsg struct {
	Err error
}

// ShowHelpMsg carries the rendered help text.
type ShowHelpMsg struct {
	Content string
}

// QuitMsg asks the UI to flush pending edits and exit.
type QuitMsg struct{}

// ModelLoadedMsg reports a successful model load.
type ModelLoadedMsg struct {
	Config router.ModelConfig
}

// ProjectOpenedMsg reports that a project became active.
type ProjectOpenedMsg struct {
	Project string
}

// FilesChangedMsg reports a changed file listing. Select, when set, names a
// file the UI should open.
type FilesChangedMsg struct {
	Select string
}

// ConfirmClearMsg asks the UI to confirm clearing the conversation.
type ConfirmClearMsg struct{}

// CopyToClipboardMsg asks the UI to copy Content.
type CopyToClipboardMsg struct {
	Content string
}

func msgCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func errCmd(err error) tea.Cmd {
	return msgCmd(ErrorMsg{Err: err})
}

// =============================================================================
// EXECUTION
// =============================================================================

// Execute parses input and runs the matching handler. Unknown commands and
// invalid arguments produce an ErrorMsg. It returns nil for non-command
// input.
func (r *Registry) Execute(ctx *Context, input string) tea.Cmd {
	result := r.Parse(input)
	if !result.IsCommand {
		return nil
	}
	if result.Command == nil {
		return errCmd(errs.New(errs.KindInvalidInput, "Unknown command: "+result.CommandName))
	}
	if err := ValidateArgs(result.Command, result.Args); err != nil {
		return errCmd(errs.Wrap(errs.KindInvalidInput, "invalid arguments", err))
	}
	if ctx.Registry == nil {
		ctx.Registry = r
	}
	return result.Command.Handler(ctx, result.Args)
}

// =============================================================================
// HANDLERS
// =============================================================================

// HandleHelp renders the command list.
func HandleHelp(ctx *Context, args []string) tea.Cmd {
	return msgCmd(ShowHelpMsg{Content: GenerateHelpText(ctx.Registry)})
}

// HandleQuit exits the application.
func HandleQuit(ctx *Context, args []string) tea.Cmd {
	return msgCmd(QuitMsg{})
}

// HandleModel loads a model, or reports the current one without arguments.
func HandleModel(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		cfg, ok := ctx.Models.Current()
		if !ok {
			return msgCmd(SystemMessageMsg{Content: "No model loaded. Use :model <id> to load one."})
		}
		return msgCmd(SystemMessageMsg{Content: fmt.Sprintf("Current model: %s (%s)", cfg.Model, cfg.Backend.DisplayName())})
	}

	id := args[0]
	models := ctx.Models
	c := ctx.context()
	return func() tea.Msg {
		cfg, err := models.LoadModel(c, id)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return ModelLoadedMsg{Config: cfg}
	}
}

// HandleModels lists the installed local models and the hosted catalog.
func HandleModels(ctx *Context, args []string) tea.Cmd {
	models := ctx.Models
	c := ctx.context()
	return func() tea.Msg {
		return SystemMessageMsg{Content: FormatModelList(models.ListLocalModels(c), models, nil)}
	}
}

// FormatModelList renders local names and hosted models grouped by backend.
// Hosted backends without a key are marked. sizes, when given, annotates
// local models by name.
func FormatModelList(local []string, models *session.ModelManager, sizes map[string]string) string {
	var sb strings.Builder
	current, _ := models.Current()

	sb.WriteString("Local (Ollama):\n")
	if len(local) == 0 {
		sb.WriteString("  (none installed or Ollama not running)\n")
	}
	for _, m := range model.LocalModels(local) {
		line := "  " + m.ID
		if size := sizes[m.ID]; size != "" {
			line += " (" + size + ")"
		}
		sb.WriteString(line + marker(current, m) + "\n")
	}

	for _, b := range []router.Backend{router.BackendAnthropic, router.BackendOpenAI} {
		header := b.DisplayName() + ":"
		if !models.HasCredential(b) {
			header += " (no API key)"
		}
		sb.WriteString(header + "\n")
		for _, m := range model.HostedModels(b) {
			sb.WriteString("  " + m.ID + " - " + m.Name + marker(current, m) + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func marker(current router.ModelConfig, m model.ModelInfo) string {
	if current.Model == m.ID && current.Backend == m.Backend {
		return " (current)"
	}
	return ""
}

// HandleKey stores a hosted provider key.
func HandleKey(ctx *Context, args []string) tea.Cmd {
	backend, err := router.ParseBackend(strings.ToLower(args[0]))
	if err != nil {
		return errCmd(errs.Wrap(errs.KindInvalidInput, "unknown provider", err))
	}
	if err := ctx.Models.SetCredential(backend, args[1]); err != nil {
		return errCmd(err)
	}
	if strings.TrimSpace(args[1]) == "" {
		return msgCmd(SystemMessageMsg{Content: backend.DisplayName() + " API key cleared"})
	}
	return msgCmd(SystemMessageMsg{Content: backend.DisplayName() + " API key saved"})
}

// HandleOpen makes a project active.
func HandleOpen(ctx *Context, args []string) tea.Cmd {
	files := ctx.Files
	c := ctx.context()
	name := args[0]
	return func() tea.Msg {
		if err := files.OpenProject(c, name); err != nil {
			return ErrorMsg{Err: err}
		}
		return ProjectOpenedMsg{Project: name}
	}
}

// HandleNew creates an empty file and selects it.
func HandleNew(ctx *Context, args []string) tea.Cmd {
	files := ctx.Files
	c := ctx.context()
	p := args[0]
	return func() tea.Msg {
		if err := files.CreateFile(c, p, ""); err != nil {
			return ErrorMsg{Err: err}
		}
		return FilesChangedMsg{Select: files.Current()}
	}
}

// HandleRemove deletes a file, the current one by default.
func HandleRemove(ctx *Context, args []string) tea.Cmd {
	p := ctx.Files.Current()
	if len(args) > 0 {
		p = args[0]
	}
	if p == "" {
		return errCmd(errs.New(errs.KindInvalidInput, "no file selected"))
	}
	files := ctx.Files
	c := ctx.context()
	return func() tea.Msg {
		if err := files.DeleteFile(c, p); err != nil {
			return ErrorMsg{Err: err}
		}
		return FilesChangedMsg{}
	}
}

// HandleRefresh re-lists the open project.
func HandleRefresh(ctx *Context, args []string) tea.Cmd {
	files := ctx.Files
	c := ctx.context()
	return func() tea.Msg {
		if err := files.Refresh(c); err != nil {
			return ErrorMsg{Err: err}
		}
		return FilesChangedMsg{}
	}
}

// HandleClear asks for confirmation before the conversation is cleared.
func HandleClear(ctx *Context, args []string) tea.Cmd {
	return msgCmd(ConfirmClearMsg{})
}

// HandleCopy copies the last assistant answer.
func HandleCopy(ctx *Context, args []string) tea.Cmd {
	turn, ok := ctx.Assistant.LastAssistant()
	if !ok {
		return errCmd(errs.New(errs.KindNotFound, "no answer to copy"))
	}
	return msgCmd(CopyToClipboardMsg{Content: turn.Content})
}

// =============================================================================
// HELP
// =============================================================================

// GenerateHelpText lists the commands by category.
func GenerateHelpText(r *Registry) string {
	var sb strings.Builder
	groups := r.ByCategory()
	for _, category := range []string{"General", "Model", "Files", "Assistant"} {
		cmds := groups[category]
		if len(cmds) == 0 {
			continue
		}
		sb.WriteString(category + ":\n")
		for _, cmd := range cmds {
			usage := cmd.Usage
			if usage == "" {
				usage = cmd.Name
			}
			sb.WriteString(fmt.Sprintf("  %-34s %s\n", usage, cmd.Description))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
