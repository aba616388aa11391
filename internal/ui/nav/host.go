// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package nav

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tauros-ai/tauros-tui/internal/ui/boundary"
	"github.com/tauros-ai/tauros-tui/internal/ui/screens"
	"github.com/tauros-ai/tauros-tui/internal/ui/styles"
)

// Fallback messages shown when a screen region faults.
var fallbacks = map[screens.ID]string{
	screens.Chat:     "the conversation screen hit an error. your history is safe.",
	screens.History:  "the history screen hit an error.",
	screens.Settings: "the settings screen hit an error.",
}

// Broadcast is implemented by messages that every screen should see, not
// just the active one.
type Broadcast interface {
	Broadcast()
}

// Host owns the route stack and one boundary per visited screen.
type Host struct {
	loader   *screens.Loader
	theme    *styles.Theme
	reporter boundary.Reporter
	logger   *zap.Logger

	stack   []Route
	regions map[screens.ID]*boundary.Boundary
	size    *tea.WindowSizeMsg
}

// NewHost creates a host starting at initial.
func NewHost(loader *screens.Loader, theme *styles.Theme, reporter boundary.Reporter, logger *zap.Logger, initial Route) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	if theme == nil {
		theme = styles.NewTheme(styles.ModeAuto)
	}
	if initial == nil {
		initial = ChatRoute{}
	}
	return &Host{
		loader:   loader,
		theme:    theme,
		reporter: reporter,
		logger:   logger.Named("nav"),
		stack:    []Route{initial},
		regions:  make(map[screens.ID]*boundary.Boundary),
	}
}

// Current returns the route on top of the stack.
func (h *Host) Current() Route { return h.stack[len(h.stack)-1] }

// Depth returns the number of routes on the stack.
func (h *Host) Depth() int { return len(h.stack) }

// Region returns the boundary for id, or nil if it was never visited.
func (h *Host) Region(id screens.ID) *boundary.Boundary { return h.regions[id] }

// Init implements tea.Model.
func (h *Host) Init() tea.Cmd {
	return h.enter(h.Current())
}

// Update implements tea.Model.
func (h *Host) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case NavigateMsg:
		if msg.Route == nil {
			return h, nil
		}
		if sameRoute(h.Current(), msg.Route) {
			return h, nil
		}
		h.logger.Debug("navigate", zap.Stringer("from", h.Current()), zap.Stringer("to", msg.Route))
		// A screen appears on the stack at most once: going to a screen
		// already on it unwinds to that entry and updates its route.
		if i := h.indexOf(ScreenFor(msg.Route)); i >= 0 {
			h.stack = h.stack[:i+1]
			h.stack[i] = msg.Route
		} else {
			h.stack = append(h.stack, msg.Route)
		}
		return h, h.enter(msg.Route)

	case BackMsg:
		if len(h.stack) == 1 {
			return h, nil
		}
		h.stack = h.stack[:len(h.stack)-1]
		h.logger.Debug("back", zap.Stringer("to", h.Current()))
		return h, h.enter(h.Current())

	case tea.WindowSizeMsg:
		h.size = &msg
		return h, h.broadcast(msg)

	case screens.LoadedMsg, boundary.FaultMsg, Broadcast:
		return h, h.broadcast(msg)
	}

	b := h.active()
	if b == nil {
		return h, nil
	}
	_, cmd := b.Update(msg)
	return h, cmd
}

// View implements tea.Model.
func (h *Host) View() string {
	if b := h.active(); b != nil {
		return b.View()
	}
	return ""
}

func (h *Host) indexOf(id screens.ID) int {
	for i, r := range h.stack {
		if ScreenFor(r) == id {
			return i
		}
	}
	return -1
}

func (h *Host) active() *boundary.Boundary {
	return h.regions[ScreenFor(h.Current())]
}

// enter makes r's region active, creating it on first visit, and hands the
// route to the screen as props.
func (h *Host) enter(r Route) tea.Cmd {
	id := ScreenFor(r)
	var cmds []tea.Cmd

	b, ok := h.regions[id]
	if !ok {
		b = h.newRegion(id)
		h.regions[id] = b
		cmds = append(cmds, b.Init())
		if h.size != nil {
			_, cmd := b.Update(*h.size)
			cmds = append(cmds, cmd)
		}
	}

	_, cmd := b.Update(screens.PropsMsg{Props: r})
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (h *Host) newRegion(id screens.ID) *boundary.Boundary {
	loader, style := h.loader, h.theme.Placeholder
	return boundary.New(string(id),
		func() tea.Model { return screens.NewSlot(loader, id, style) },
		boundary.WithFallback(fallbacks[id]),
		boundary.WithReporter(h.reporter),
		boundary.WithTheme(h.theme),
		boundary.WithReset(true),
	)
}

func (h *Host) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, b := range h.regions {
		_, cmd := b.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func sameRoute(a, b Route) bool {
	return a == b
}

// Tabs renders the route bar with the active screen highlighted.
func (h *Host) Tabs() string {
	active := ScreenFor(h.Current())
	items := []struct {
		id    screens.ID
		label string
	}{
		{screens.Chat, "F1 chat"},
		{screens.History, "F2 history"},
		{screens.Settings, "F3 settings"},
	}

	parts := make([]string, 0, len(items))
	for _, it := range items {
		style := h.theme.Tab
		if it.id == active {
			style = h.theme.TabActive
		}
		parts = append(parts, style.Render(it.label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
