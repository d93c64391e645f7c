// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/diycursor/internal/errs"
	"github.com/jeranaias/diycursor/internal/logging"
	"github.com/jeranaias/diycursor/internal/model"
)

// FileSource exposes the active project and current file.
type FileSource interface {
	Project() string
	Current() string
	ReadFile(path string) (string, error)
}

// Generator produces a completion for a prompt with the loaded model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the conversation with the loaded model. Only one Submit
// may be in flight at a time.
type Controller struct {
	mu sync.Mutex

	files  FileSource
	models Generator
	logger *zap.Logger

	conversation *model.Conversation
	busy         bool
	epoch        uint64 // bumped by Clear so in-flight replies are dropped
}

// NewController creates a controller with an empty conversation.
func NewController(files FileSource, models Generator, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		files:        files,
		models:       models,
		logger:       logger,
		conversation: model.NewConversation(),
	}
}

// Submit appends text as a user turn, asks the model and appends its reply.
//
// It returns ErrBusy without touching the conversation while another
// submission is in flight, and InvalidInput for blank text. Generation
// failures are recorded as assistant turns and are not returned.
func (c *Controller) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errs.New(errs.KindInvalidInput, "question is empty")
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return errs.ErrBusy
	}
	c.busy = true
	c.conversation.Append(model.NewUserTurn(text))
	epoch := c.epoch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	prompt := c.prompt(text)

	reply, err := c.models.Generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("generation failed", logging.Error(err))
		reply = ErrorTurnText(err)
	}

	c.mu.Lock()
	if c.epoch == epoch {
		c.conversation.Append(model.NewAssistantTurn(reply))
	}
	c.mu.Unlock()
	return nil
}

// prompt builds the prompt for question, falling back to the file-less form
// when the current file cannot be read.
func (c *Controller) prompt(question string) string {
	project := c.files.Project()
	file := c.files.Current()
	if file == "" {
		return BuildPrompt(project, "", "", question)
	}

	content, err := c.files.ReadFile(file)
	if err != nil {
		c.logger.Warn("failed to read current file for context",
			zap.String("file", file), zap.Error(err))
		return BuildPrompt(project, "", "", question)
	}
	return BuildPrompt(project, file, content, question)
}

// Clear discards every turn. A reply still in flight is dropped.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conversation.Clear()
	c.epoch++
}

// Turns returns the conversation in display order.
func (c *Controller) Turns() []model.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversation.Turns()
}

// Busy reports whether a submission is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// LastAssistant returns the most recent assistant turn.
func (c *Controller) LastAssistant() (model.Turn, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversation.LastAssistant()
}
