// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings is the screen that shows and edits connection settings
// and reports backend health.
package settings

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tauros-ai/tauros-tui/internal/api"
	"github.com/tauros-ai/tauros-tui/internal/config"
	"github.com/tauros-ai/tauros-tui/internal/ui/styles"
)

// HealthTimeout bounds a health check.
const HealthTimeout = 5 * time.Second

// HealthChecker is the part of api.Client the screen uses.
type HealthChecker interface {
	Health(ctx context.Context) (*api.Health, error)
}

// ConfigMsg announces a new active configuration, either saved from this
// screen or re-loaded from disk. Every screen receives it.
type ConfigMsg struct {
	Config *config.Config
	Err    error
}

// Broadcast marks ConfigMsg for delivery to all screens.
func (ConfigMsg) Broadcast() {}

type healthMsg struct {
	health *api.Health
	err    error
}

type savedMsg struct {
	cfg *config.Config
	err error
}

// field is an editable setting.
type field struct {
	key    string
	label  string
	hotkey string
}

var editable = []field{
	{key: "api.base_url", label: "base url", hotkey: "e"},
	{key: "api.user_id", label: "user id", hotkey: "u"},
}

// Model is the settings screen.
type Model struct {
	cfg     *config.Config
	path    string
	checker HealthChecker
	theme   *styles.Theme

	editing *field
	input   textinput.Model

	checking  bool
	health    *api.Health
	healthErr error

	status    string
	statusErr bool
	width     int
}

// New creates the settings screen for cfg, saving edits to path.
func New(cfg *config.Config, path string, checker HealthChecker, theme *styles.Theme) *Model {
	if theme == nil {
		theme = styles.NewTheme(styles.ModeAuto)
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 512

	return &Model{
		cfg:     cfg.Clone(),
		path:    path,
		checker: checker,
		theme:   theme,
		input:   ti,
		width:   80,
	}
}

// Init checks backend health once when the screen opens.
func (m *Model) Init() tea.Cmd {
	return m.checkHealth()
}

// Editing reports whether a field is being edited.
func (m *Model) Editing() bool { return m.editing != nil }

// Config returns the settings as currently shown.
func (m *Model) Config() *config.Config { return m.cfg.Clone() }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-20, 20)
		return m, nil

	case healthMsg:
		m.checking = false
		m.health, m.healthErr = msg.health, msg.err
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.setStatus("save failed: "+msg.err.Error(), true)
			return m, nil
		}
		m.cfg = msg.cfg
		m.setStatus("saved to "+m.path, false)
		cfg := msg.cfg.Clone()
		return m, tea.Batch(
			func() tea.Msg { return ConfigMsg{Config: cfg} },
			m.checkHealth(),
		)

	case ConfigMsg:
		if msg.Err != nil {
			m.setStatus("config reload failed: "+msg.Err.Error(), true)
			return m, nil
		}
		if msg.Config != nil {
			m.cfg = msg.Config.Clone()
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing != nil {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)
	}

	if m.editing != nil {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if k == "h" {
		return m, m.checkHealth()
	}
	for i := range editable {
		if editable[i].hotkey == k {
			return m, m.startEdit(&editable[i])
		}
	}
	return m, nil
}

func (m *Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = nil
		m.input.Blur()
		m.setStatus("edit cancelled", false)
		return m, nil

	case tea.KeyEnter:
		return m, m.commitEdit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) startEdit(f *field) tea.Cmd {
	value, err := m.cfg.Get(f.key)
	if err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}
	m.editing = f
	m.input.SetValue(fmt.Sprint(value))
	m.input.CursorEnd()
	m.status = ""
	return m.input.Focus()
}

// commitEdit validates the edited value and saves the config. Invalid
// values keep the editor open.
func (m *Model) commitEdit() tea.Cmd {
	next := m.cfg.Clone()
	if err := next.Set(m.editing.key, strings.TrimSpace(m.input.Value())); err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}
	if err := next.Validate(); err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}

	m.editing = nil
	m.input.Blur()
	m.setStatus("saving...", false)

	path := m.path
	return func() tea.Msg {
		if err := config.SaveTo(next, path); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{cfg: next}
	}
}

func (m *Model) checkHealth() tea.Cmd {
	if m.checker == nil {
		return nil
	}
	m.checking = true
	checker := m.checker
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), HealthTimeout)
		defer cancel()
		h, err := checker.Health(ctx)
		return healthMsg{health: h, err: err}
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status, m.statusErr = text, isErr
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m *Model) View() string {
	rows := []string{
		m.row("base url", m.cfg.API.BaseURL, "e"),
		m.row("user id", m.cfg.API.UserID, "u"),
		m.row("timeout", m.cfg.Timeout().String(), ""),
		m.row("max length", fmt.Sprintf("%d characters", m.cfg.API.MaxMessageLength), ""),
		m.row("theme", m.cfg.UI.Theme, ""),
		m.row("config file", m.path, ""),
		m.row("backend", m.renderHealth(), "h"),
	}

	parts := []string{lipgloss.JoinVertical(lipgloss.Left, rows...)}

	if m.editing != nil {
		parts = append(parts, "", m.theme.Label.Render(m.editing.label)+m.input.View(),
			m.theme.Help.Render("Enter save  Esc cancel"))
	}
	if m.status != "" {
		style := m.theme.Status
		if m.statusErr {
			style = m.theme.ValidationBox
		}
		parts = append(parts, "", style.Render(m.status))
	}
	if m.editing == nil {
		parts = append(parts, "", m.theme.Help.Render("e edit url  u edit user id  h check backend"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) row(label, value, hotkey string) string {
	line := m.theme.Label.Render(label) + m.theme.Value.Render(value)
	if hotkey != "" {
		line += "  " + m.theme.Help.Render("["+hotkey+"]")
	}
	return line
}

func (m *Model) renderHealth() string {
	switch {
	case m.checking:
		return "checking..."
	case m.healthErr != nil:
		return m.theme.Unhealthy.String() + " " + api.UserMessage(m.healthErr)
	case m.health == nil:
		return "unknown"
	case m.health.Healthy():
		return m.theme.Healthy.String() + " " + m.health.Status + formatServices(m.health.Services)
	default:
		return m.theme.Unhealthy.String() + " " + m.health.Status + formatServices(m.health.Services)
	}
}

func formatServices(services map[string]string) string {
	if len(services) == 0 {
		return ""
	}
	keys := make([]string, 0, len(services))
	for k := range services {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+services[k])
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
