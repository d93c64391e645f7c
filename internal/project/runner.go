// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package project

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// Runner executes an external program in a directory.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) error
}

// ExecRunner runs programs with os/exec. A failing program's trimmed stderr
// becomes the error text when there is any.
type ExecRunner struct {
	Logger *zap.Logger
}

// Run executes name with args in dir and waits for it to finish.
func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	if r.Logger != nil {
		r.Logger.Debug("running command",
			zap.String("dir", dir),
			zap.String("name", name),
			zap.Strings("args", args))
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return errors.New(msg)
		}
		return err
	}
	return nil
}

// ShellCommand returns the program and arguments that run command through
// the platform shell.
func ShellCommand(command string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "powershell.exe", []string{"-Command", command}
	}
	return "/bin/sh", []string{"-c", command}
}
