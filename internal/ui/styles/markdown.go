// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// DefaultWordWrap is used when the caller passes a non-positive width.
const DefaultWordWrap = 80

// Renderer turns reply markdown into terminal output.
type Renderer interface {
	Render(markdown string) (string, error)
}

// NewMarkdownRenderer returns a glamour renderer styled for mode.
func NewMarkdownRenderer(mode string, wrap int) (*glamour.TermRenderer, error) {
	if wrap <= 0 {
		wrap = DefaultWordWrap
	}

	style := glamour.WithAutoStyle()
	switch mode {
	case ModeDark:
		style = glamour.WithStandardStyle("dark")
	case ModeLight:
		style = glamour.WithStandardStyle("light")
	}

	return glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(wrap),
	)
}

// PlainRenderer passes text through with surrounding blank lines trimmed.
// Used when markdown is disabled and in tests.
type PlainRenderer struct{}

// Render implements Renderer.
func (PlainRenderer) Render(markdown string) (string, error) {
	return strings.TrimSpace(markdown), nil
}

// RenderOr renders markdown with r and falls back to the raw text when r is
// nil or fails.
func RenderOr(r Renderer, markdown string) string {
	if r == nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}
