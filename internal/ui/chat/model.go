// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tauros-ai/tauros-tui/internal/sender"
	"github.com/tauros-ai/tauros-tui/internal/ui/styles"
)

// Layout constants (lines).
const (
	inputHeight  = 3
	statusHeight = 1
	noticeHeight = 1
	helpHeight   = 1
)

// Model is the chat screen.
type Model struct {
	ctrl     *sender.Controller
	theme    *styles.Theme
	renderer styles.Renderer
	keys     KeyMap

	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model

	width  int
	height int

	// Validation text from the last rejected submit.
	validation string

	// Rendered replies by exchange ID.
	rendered map[string]string
}

// New creates the chat screen. renderer may be nil, in which case replies
// are shown as plain text.
func New(ctrl *sender.Controller, theme *styles.Theme, renderer styles.Renderer) *Model {
	if theme == nil {
		theme = styles.NewTheme(styles.ModeAuto)
	}

	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("ctrl+j", "alt+enter"))
	ta.SetValue(ctrl.Input())
	ta.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Status

	m := &Model{
		ctrl:     ctrl,
		theme:    theme,
		renderer: renderer,
		keys:     DefaultKeyMap(),
		input:    ta,
		viewport: vp,
		spinner:  sp,
		help:     help.New(),
		rendered: make(map[string]string),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.ctrl.State() == sender.StateSending {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case sender.ResolvedMsg:
		m.input.SetValue(m.ctrl.Input())
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.State() != sender.StateSending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetInput(m.input.Value())
	m.validation = ""
	return m, cmd
}

// submit hands the input to the controller. Rejections are shown inline;
// accepted sends start the spinner.
func (m *Model) submit() tea.Cmd {
	m.ctrl.SetInput(m.input.Value())
	send, err := m.ctrl.SubmitInput()
	if err != nil {
		m.validation = sender.NoticeFor(err, m.ctrl.MaxLength()).Text
		return nil
	}
	m.validation = ""
	m.refresh()
	return tea.Batch(send, m.spinner.Tick)
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	m.input.SetWidth(max(width-2, 10))

	vpHeight := height - inputHeight - statusHeight - noticeHeight - helpHeight
	m.viewport.Width = max(width, 1)
	m.viewport.Height = max(vpHeight, 1)
	m.refresh()
}

// refresh rebuilds the transcript and scrolls to the newest entry.
func (m *Model) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

// Validation returns the inline validation notice, if any.
func (m *Model) Validation() string { return m.validation }
