// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history is the screen that lists past exchanges of the session.
package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tauros-ai/tauros-tui/internal/conversation"
	"github.com/tauros-ai/tauros-tui/internal/ui/nav"
	"github.com/tauros-ai/tauros-tui/internal/ui/screens"
	"github.com/tauros-ai/tauros-tui/internal/ui/styles"
	"github.com/tauros-ai/tauros-tui/internal/util"
)

const emptyHistory = "no exchanges yet."

// Source is where the screen reads exchanges from.
type Source interface {
	Snapshot() conversation.Snapshot
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Open:   key.NewBinding(key.WithKeys("enter")),
	Top:    key.NewBinding(key.WithKeys("home", "g")),
	Bottom: key.NewBinding(key.WithKeys("end", "G")),
}

// Model is the history screen.
type Model struct {
	source Source
	theme  *styles.Theme

	snap     conversation.Snapshot
	cursor   int
	expanded bool

	width  int
	height int
}

// New creates the history screen.
func New(source Source, theme *styles.Theme) *Model {
	if theme == nil {
		theme = styles.NewTheme(styles.ModeAuto)
	}
	m := &Model{source: source, theme: theme, width: 80, height: 24}
	m.reload()
	m.cursor = max(len(m.snap.Exchanges)-1, 0)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Selected returns the exchange under the cursor.
func (m *Model) Selected() (conversation.Exchange, bool) {
	if len(m.snap.Exchanges) == 0 {
		return conversation.Exchange{}, false
	}
	return m.snap.Exchanges[m.cursor], true
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case screens.PropsMsg:
		m.reload()
		if r, ok := msg.Props.(nav.HistoryRoute); ok && r.Focus != "" {
			if i, found := m.snap.Find(r.Focus); found {
				m.cursor = i
				m.expanded = true
			}
		}

	case tea.KeyMsg:
		m.reload()
		n := len(m.snap.Exchanges)
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < n-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Top):
			m.cursor = 0
		case key.Matches(msg, keys.Bottom):
			m.cursor = max(n-1, 0)
		case key.Matches(msg, keys.Open):
			m.expanded = !m.expanded
		}

	default:
		// Covers sender.ResolvedMsg and anything else that may have
		// changed the store.
		m.reload()
	}
	return m, nil
}

func (m *Model) reload() {
	m.snap = m.source.Snapshot()
	if m.cursor >= len(m.snap.Exchanges) {
		m.cursor = max(len(m.snap.Exchanges)-1, 0)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.snap.Exchanges) == 0 {
		return m.theme.Status.Render(emptyHistory)
	}

	var sb strings.Builder
	sb.WriteString(m.theme.Label.Render(fmt.Sprintf("%d exchanges", len(m.snap.Exchanges))))
	sb.WriteString("\n\n")

	start, end := m.window()
	for i := start; i < end; i++ {
		sb.WriteString(m.renderRow(i))
		sb.WriteString("\n")
	}

	if ex, ok := m.Selected(); ok && m.expanded {
		sb.WriteString("\n")
		sb.WriteString(m.renderDetail(ex))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// window returns the visible row range, keeping the cursor on screen.
func (m *Model) window() (int, int) {
	rows := max(m.height/2, 3)
	n := len(m.snap.Exchanges)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	return start, min(start+rows, n)
}

func (m *Model) renderRow(i int) string {
	ex := m.snap.Exchanges[i]
	stamp := ex.Timestamp.Format("15:04:05")
	previewWidth := max(m.width-util.Width(stamp)-6, 10)
	line := stamp + "  " + util.Preview(ex.Message, previewWidth)

	if i == m.cursor {
		return m.theme.ListItemSelected.Render("> " + line)
	}
	return m.theme.ListItem.Render(line)
}

func (m *Model) renderDetail(ex conversation.Exchange) string {
	width := max(m.width-4, 20)
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.UserMessage.Render("you"),
		lipgloss.NewStyle().Width(width).Render(ex.Message),
		"",
		m.theme.Label.Render("reply"),
		m.theme.Reply.Width(width).Render(ex.Response),
	)
	return body
}
