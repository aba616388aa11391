// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package nav is the navigation shell: a stack of routes, each shown in its
// own crash isolation boundary around a lazily loaded screen.
package nav

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tauros-ai/tauros-tui/internal/ui/screens"
)

// Route is a destination. The set is closed: ChatRoute, HistoryRoute and
// SettingsRoute.
type Route interface {
	route()
	fmt.Stringer
}

// ChatRoute is the conversation screen.
type ChatRoute struct{}

// HistoryRoute lists past exchanges. Focus optionally selects one by ID.
type HistoryRoute struct {
	Focus string
}

// SettingsRoute shows connection settings and backend health.
type SettingsRoute struct{}

func (ChatRoute) route()     {}
func (HistoryRoute) route()  {}
func (SettingsRoute) route() {}

func (ChatRoute) String() string { return "chat" }

func (r HistoryRoute) String() string {
	if r.Focus == "" {
		return "history"
	}
	return "history#" + r.Focus
}

func (SettingsRoute) String() string { return "settings" }

// ScreenFor maps a route to the screen that renders it.
func ScreenFor(r Route) screens.ID {
	switch r.(type) {
	case ChatRoute:
		return screens.Chat
	case HistoryRoute:
		return screens.History
	case SettingsRoute:
		return screens.Settings
	default:
		panic(fmt.Sprintf("nav: unhandled route %T", r))
	}
}

// NavigateMsg pushes a route.
type NavigateMsg struct {
	Route Route
}

// BackMsg pops the current route.
type BackMsg struct{}

// Navigate returns a command that moves to r.
func Navigate(r Route) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Route: r} }
}

// GoBack returns a command that returns to the previous route.
func GoBack() tea.Cmd {
	return func() tea.Msg { return BackMsg{} }
}
