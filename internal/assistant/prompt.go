// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import "strings"

// errorHint follows every failure shown in the conversation.
const errorHint = "Make sure you've loaded a model first."

// BuildPrompt assembles the context-augmented prompt. The file block is
// included only when file is non-empty; content is embedded verbatim.
func BuildPrompt(project, file, content, question string) string {
	var b strings.Builder
	b.WriteString("Project: ")
	b.WriteString(project)
	b.WriteString("\n")
	if file != "" {
		b.WriteString("Current file (")
		b.WriteString(file)
		b.WriteString("):\n```\n")
		b.WriteString(content)
		b.WriteString("\n```\n")
	}
	b.WriteString("\nUser question: ")
	b.WriteString(question)
	return b.String()
}

// ErrorTurnText is the assistant turn content for a failed generation.
func ErrorTurnText(err error) string {
	return "Error: " + err.Error() + "\n\n" + errorHint
}
