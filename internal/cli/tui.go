// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tauros-ai/tauros-tui/internal/api"
	"github.com/tauros-ai/tauros-tui/internal/config"
	"github.com/tauros-ai/tauros-tui/internal/conversation"
	"github.com/tauros-ai/tauros-tui/internal/sender"
	"github.com/tauros-ai/tauros-tui/internal/ui/app"
	"github.com/tauros-ai/tauros-tui/internal/ui/boundary"
	"github.com/tauros-ai/tauros-tui/internal/ui/nav"
	"github.com/tauros-ai/tauros-tui/internal/ui/screens"
	"github.com/tauros-ai/tauros-tui/internal/ui/settings"
	"github.com/tauros-ai/tauros-tui/internal/ui/styles"
)

// runTUI starts the full-screen interface and blocks until it exits.
func runTUI(ctx context.Context, env *Env) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := env.Logger
	cfg := env.Config

	client := api.NewClient(cfg.ClientConfig(), logger)
	defer client.Close()

	ctrl := sender.New(client, conversation.NewStore(),
		sender.WithMaxLength(cfg.API.MaxMessageLength),
		sender.WithLogger(logger))

	theme := styles.NewTheme(cfg.UI.Theme)
	loader := screens.NewLoader(logger)
	host := nav.NewHost(loader, theme, boundary.NewZapReporter(logger), logger, nav.ChatRoute{})

	m := app.New(app.Options{
		Controller: ctrl,
		Client:     client,
		Config:     cfg,
		Host:       host,
		Theme:      theme,
		Logger:     logger,
	})
	app.RegisterScreens(loader, app.ScreenDeps{
		Controller: ctrl,
		Config:     m.Config,
		ConfigPath: env.ConfigPath,
		Health:     client,
		Theme:      theme,
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	// Edits made outside the TUI reach every screen as a ConfigMsg.
	err := config.Watch(ctx, env.ConfigPath, 0, func(c *config.Config, err error) {
		p.Send(settings.ConfigMsg{Config: c, Err: err})
	})
	if err != nil {
		logger.Warn("config watch disabled", zap.Error(err))
	}

	logger.Info("tui started",
		zap.String("base_url", cfg.API.BaseURL),
		zap.String("config", env.ConfigPath))

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return NewCommandError("tauros", "running the terminal UI", err)
	}
	return nil
}
