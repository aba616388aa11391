// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root bubbletea model of the tauros TUI.
//
// It owns the pieces that outlive any single screen: the send controller,
// the navigation host, and the blocking notice overlay. Send results are
// resolved here so a reply is recorded even when the chat screen is not
// showing or has faulted.
package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tauros-ai/tauros-tui/internal/api"
	"github.com/tauros-ai/tauros-tui/internal/config"
	"github.com/tauros-ai/tauros-tui/internal/sender"
	"github.com/tauros-ai/tauros-tui/internal/ui/boundary"
	"github.com/tauros-ai/tauros-tui/internal/ui/nav"
	"github.com/tauros-ai/tauros-tui/internal/ui/screens"
	"github.com/tauros-ai/tauros-tui/internal/ui/settings"
	"github.com/tauros-ai/tauros-tui/internal/ui/styles"
)

// Lines taken by the header and footer.
const chromeHeight = 2

// Reconfigurer is the part of api.Client that follows config changes.
type Reconfigurer interface {
	Reconfigure(cfg *api.ClientConfig)
}

// KeyMap holds the global bindings.
type KeyMap struct {
	Quit     key.Binding
	Chat     key.Binding
	History  key.Binding
	Settings key.Binding
	Back     key.Binding
	Dismiss  key.Binding
}

// DefaultKeyMap returns the global bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("C-c", "quit")),
		Chat:     key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "chat")),
		History:  key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "history")),
		Settings: key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "settings")),
		Back:     key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("C-b", "back")),
		Dismiss:  key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("Enter", "dismiss")),
	}
}

// Options wires the root model.
type Options struct {
	Controller *sender.Controller
	Client     Reconfigurer
	Config     *config.Config
	Host       *nav.Host
	Theme      *styles.Theme
	Logger     *zap.Logger
}

// Model is the root model.
type Model struct {
	ctrl   *sender.Controller
	client Reconfigurer
	cfg    *config.Config
	host   *nav.Host
	theme  *styles.Theme
	logger *zap.Logger
	keys   KeyMap

	notice sender.Notice
	width  int
	height int
}

// New creates the root model.
func New(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme(styles.ModeAuto)
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	return &Model{
		ctrl:   opts.Controller,
		client: opts.Client,
		cfg:    opts.Config,
		host:   opts.Host,
		theme:  opts.Theme,
		logger: opts.Logger.Named("app"),
		keys:   DefaultKeyMap(),
	}
}

// Config returns a copy of the active configuration.
func (m *Model) Config() *config.Config { return m.cfg.Clone() }

// Notice returns the blocking notice being shown, if any.
func (m *Model) Notice() sender.Notice { return m.notice }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.host.Init()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-chromeHeight, 1)}
		return m, m.forward(inner)

	case sender.ResultMsg:
		notice := m.ctrl.Resolve(msg)
		if notice.Blocking {
			m.notice = notice
		}
		var faultCmd tea.Cmd
		if msg.Panic != nil {
			// The send was issued from the chat screen; fault its region.
			faultCmd = m.forward(boundary.FaultMsg{
				Region: string(screens.Chat),
				Fault:  &boundary.PanicError{Value: msg.Panic, Stack: msg.Stack},
			})
		}
		return m, tea.Batch(faultCmd,
			m.forward(sender.ResolvedMsg{Seq: msg.Seq, State: m.ctrl.State(), Notice: notice}))

	case sender.NoticeMsg:
		if !msg.Notice.Empty() {
			m.notice = msg.Notice
		}
		return m, nil

	case settings.ConfigMsg:
		m.applyConfig(msg)
		return m, m.forward(msg)
	}

	return m, m.forward(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	// A blocking notice holds all input until acknowledged.
	if !m.notice.Empty() {
		if key.Matches(msg, m.keys.Dismiss) {
			m.notice = sender.Notice{}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Chat):
		return m, m.forward(nav.NavigateMsg{Route: nav.ChatRoute{}})
	case key.Matches(msg, m.keys.History):
		return m, m.forward(nav.NavigateMsg{Route: m.historyRoute()})
	case key.Matches(msg, m.keys.Settings):
		return m, m.forward(nav.NavigateMsg{Route: nav.SettingsRoute{}})
	case key.Matches(msg, m.keys.Back):
		return m, m.forward(nav.BackMsg{})
	}
	return m, m.forward(msg)
}

// historyRoute focuses the newest exchange.
func (m *Model) historyRoute() nav.Route {
	if last, ok := m.ctrl.Store().Snapshot().Last(); ok {
		return nav.HistoryRoute{Focus: last.ID}
	}
	return nav.HistoryRoute{}
}

func (m *Model) applyConfig(msg settings.ConfigMsg) {
	if msg.Err != nil {
		m.logger.Warn("config reload failed", zap.Error(msg.Err))
		return
	}
	if msg.Config == nil {
		return
	}
	m.cfg = msg.Config.Clone()
	if m.client != nil {
		m.client.Reconfigure(msg.Config.ClientConfig())
	}
	m.ctrl.SetMaxLength(msg.Config.API.MaxMessageLength)
	m.logger.Info("config applied",
		zap.String("base_url", msg.Config.API.BaseURL),
		zap.String("user_id", msg.Config.API.UserID))
}

func (m *Model) forward(msg tea.Msg) tea.Cmd {
	_, cmd := m.host.Update(msg)
	return cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	header := m.theme.Header.Render(m.theme.Brand.Render("tauros") + "  " + m.host.Tabs())
	footer := m.theme.Help.Render(strings.Join([]string{"F1-F3 switch", "C-b back", "C-c quit"}, "  "))

	body := m.host.View()
	if m.height > 0 {
		body = lipgloss.NewStyle().Height(max(m.height-chromeHeight, 1)).MaxHeight(max(m.height-chromeHeight, 1)).Render(body)
	}

	if !m.notice.Empty() {
		body = m.renderNotice()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) renderNotice() string {
	title := "notice"
	if m.notice.Kind == sender.NoticeError {
		title = "send failed"
	}
	box := m.theme.NoticeBox.Render(
		m.theme.NoticeTitle.Render(title) + "\n\n" + m.notice.Text + "\n\n" +
			m.theme.Help.Render("press Enter to continue"))

	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, max(m.height-chromeHeight, 1), lipgloss.Center, lipgloss.Center, box)
}
