// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Slot hosts one lazily loaded screen. It shows the loader's placeholder
// until the screen is available, then forwards everything to it.
type Slot struct {
	id     ID
	loader *Loader
	style  lipgloss.Style

	screen tea.Model
	err    error
	size   *tea.WindowSizeMsg
	props  *PropsMsg
}

// PropsMsg carries navigation parameters to a screen. A slot keeps the
// latest one and hands it to the screen when it mounts.
type PropsMsg struct {
	Props any
}

// NewSlot creates a slot for id. style renders the placeholder.
func NewSlot(loader *Loader, id ID, style lipgloss.Style) *Slot {
	return &Slot{id: id, loader: loader, style: style}
}

// ID returns the hosted screen's ID.
func (s *Slot) ID() ID { return s.id }

// Loaded reports whether the screen is mounted.
func (s *Slot) Loaded() bool { return s.screen != nil }

// Screen returns the mounted screen, or nil.
func (s *Slot) Screen() tea.Model { return s.screen }

// Fault implements boundary.Faulter: a failed import faults the region.
func (s *Slot) Fault() error { return s.err }

// Init mounts the screen if it is already loaded, or starts loading it.
func (s *Slot) Init() tea.Cmd {
	if h, ok := s.loader.Get(s.id); ok {
		return s.mount(h)
	}
	return s.loader.Load(s.id)
}

// Update implements tea.Model.
func (s *Slot) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.size = &msg

	case PropsMsg:
		s.props = &msg

	case LoadedMsg:
		if msg.ID != s.id {
			break
		}
		if s.screen != nil {
			return s, nil
		}
		if msg.Err != nil {
			s.err = msg.Err
			return s, nil
		}
		return s, s.mount(msg.Handle)
	}

	if s.screen == nil {
		return s, nil
	}
	var cmd tea.Cmd
	s.screen, cmd = s.screen.Update(msg)
	return s, cmd
}

// View implements tea.Model.
func (s *Slot) View() string {
	if s.screen == nil {
		return s.style.Render(s.loader.Placeholder(s.id))
	}
	return s.screen.View()
}

func (s *Slot) mount(h Handle) tea.Cmd {
	s.screen = h()
	cmds := []tea.Cmd{s.screen.Init()}
	replay := make([]tea.Msg, 0, 2)
	if s.size != nil {
		replay = append(replay, *s.size)
	}
	if s.props != nil {
		replay = append(replay, *s.props)
	}
	for _, msg := range replay {
		var cmd tea.Cmd
		s.screen, cmd = s.screen.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}
