// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the tauros TUI.

Colours (colors.go) are lipgloss AdaptiveColor tokens so the same palette
works on light and dark terminals. Theme (theme.go) builds every
lipgloss.Style the screens use from those tokens; the theme mode comes from
config (auto, dark or light) and auto mode asks termenv for the terminal
background. Markdown rendering for replies (markdown.go) uses glamour with
a matching style.

Nothing here holds behaviour: screens ask the theme for a style and render.

# Usage

	theme := styles.NewTheme(cfg.UI.Theme)
	title := theme.Brand.Render("tauros")

	r, err := styles.NewMarkdownRenderer(theme.Mode, cfg.UI.WordWrap)
	out := styles.RenderOr(r, reply.Text)
*/
package styles
