// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tauros-ai/tauros-tui/internal/config"
	"github.com/tauros-ai/tauros-tui/internal/sender"
	"github.com/tauros-ai/tauros-tui/internal/ui/chat"
	"github.com/tauros-ai/tauros-tui/internal/ui/history"
	"github.com/tauros-ai/tauros-tui/internal/ui/screens"
	"github.com/tauros-ai/tauros-tui/internal/ui/settings"
	"github.com/tauros-ai/tauros-tui/internal/ui/styles"
)

// ScreenDeps is what the screens are built from.
type ScreenDeps struct {
	Controller *sender.Controller
	Config     func() *config.Config
	ConfigPath string
	Health     settings.HealthChecker
	Theme      *styles.Theme
}

// RegisterScreens registers the chat, history and settings importers.
// Nothing is built until a screen is first shown.
func RegisterScreens(l *screens.Loader, d ScreenDeps) {
	l.Register(screens.Chat, "conversation", func() (screens.Handle, error) {
		cfg := d.Config()
		var renderer styles.Renderer = styles.PlainRenderer{}
		if cfg.UI.Markdown {
			r, err := styles.NewMarkdownRenderer(d.Theme.Mode, cfg.UI.WordWrap)
			if err != nil {
				return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
			}
			renderer = r
		}
		return func() tea.Model { return chat.New(d.Controller, d.Theme, renderer) }, nil
	})

	l.Register(screens.History, "history", func() (screens.Handle, error) {
		return func() tea.Model { return history.New(d.Controller.Store(), d.Theme) }, nil
	})

	l.Register(screens.Settings, "settings", func() (screens.Handle, error) {
		return func() tea.Model {
			return settings.New(d.Config(), d.ConfigPath, d.Health, d.Theme)
		}, nil
	})
}
