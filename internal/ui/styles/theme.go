// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted from config.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds the styles shared by every screen.
type Theme struct {
	// Terminal capabilities
	Mode         string
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// SHELL
	// ==========================================================================

	Header    lipgloss.Style
	Brand     lipgloss.Style
	Tab       lipgloss.Style
	TabActive lipgloss.Style
	Help      lipgloss.Style

	// ==========================================================================
	// CHAT
	// ==========================================================================

	UserMessage   lipgloss.Style
	Reply         lipgloss.Style
	ReplyDegraded lipgloss.Style
	ReplyFailed   lipgloss.Style
	Status        lipgloss.Style
	CharCount     lipgloss.Style
	CharCountOver lipgloss.Style

	// ==========================================================================
	// HISTORY AND SETTINGS
	// ==========================================================================

	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style
	Timestamp        lipgloss.Style
	Label            lipgloss.Style
	Value            lipgloss.Style
	Healthy          lipgloss.Style
	Unhealthy        lipgloss.Style

	// ==========================================================================
	// OVERLAYS
	// ==========================================================================

	NoticeBox     lipgloss.Style
	NoticeTitle   lipgloss.Style
	ValidationBox lipgloss.Style
	FallbackBox   lipgloss.Style
	FallbackTitle lipgloss.Style
	Placeholder   lipgloss.Style
}

// NewTheme builds a theme for mode (auto, dark or light). Auto asks the
// terminal for its background; the others force it.
func NewTheme(mode string) *Theme {
	mode = strings.ToLower(strings.TrimSpace(mode))

	t := &Theme{
		Mode:         mode,
		ColorProfile: termenv.ColorProfile(),
	}
	switch mode {
	case ModeDark:
		t.IsDark = true
		lipgloss.SetHasDarkBackground(true)
	case ModeLight:
		t.IsDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		t.Mode = ModeAuto
		t.IsDark = termenv.HasDarkBackground()
	}

	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(Panel).
		Padding(0, 1)

	t.Brand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.Tab = lipgloss.NewStyle().
		Foreground(TextDim).
		Padding(0, 1)

	t.TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextOnAccent).
		Background(Violet).
		Padding(0, 1)

	t.Help = lipgloss.NewStyle().
		Foreground(TextFaint)

	t.UserMessage = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.Reply = lipgloss.NewStyle().
		Foreground(Text).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Violet).
		PaddingLeft(1)

	t.ReplyDegraded = t.Reply.
		BorderForeground(Orange).
		Foreground(TextDim).
		Italic(true)

	t.ReplyFailed = t.Reply.
		BorderForeground(Red).
		Foreground(Red)

	t.Status = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	t.CharCount = lipgloss.NewStyle().
		Foreground(TextFaint)

	t.CharCountOver = lipgloss.NewStyle().
		Foreground(Red).
		Bold(true)

	t.ListItem = lipgloss.NewStyle().
		Foreground(Text).
		PaddingLeft(2)

	t.ListItemSelected = lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextFaint)

	t.Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(14)

	t.Value = lipgloss.NewStyle().
		Foreground(Text)

	// Status indicators carry a shape as well as a colour.
	t.Healthy = lipgloss.NewStyle().
		Foreground(Green).
		SetString("[OK]")

	t.Unhealthy = lipgloss.NewStyle().
		Foreground(Red).
		SetString("[X]")

	t.NoticeBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Red).
		Padding(1, 3)

	t.NoticeTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Red)

	t.ValidationBox = lipgloss.NewStyle().
		Foreground(Orange)

	t.FallbackBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(Red).
		Padding(1, 2)

	t.FallbackTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Red)

	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextFaint).
		Italic(true).
		Padding(1, 2)
}

// ParseMode reports whether s names a known theme mode.
func ParseMode(s string) (string, bool) {
	switch m := strings.ToLower(strings.TrimSpace(s)); m {
	case ModeAuto, ModeDark, ModeLight:
		return m, true
	case "":
		return ModeAuto, true
	default:
		return ModeAuto, false
	}
}
