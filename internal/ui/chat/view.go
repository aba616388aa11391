// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tauros-ai/tauros-tui/internal/api"
	"github.com/tauros-ai/tauros-tui/internal/conversation"
	"github.com/tauros-ai/tauros-tui/internal/sender"
	"github.com/tauros-ai/tauros-tui/internal/ui/styles"
	"github.com/tauros-ai/tauros-tui/internal/util"
)

const emptyTranscript = "no messages yet. type below and press Enter."

// View implements tea.Model.
func (m *Model) View() string {
	parts := []string{
		m.viewport.View(),
		m.renderStatus(),
		m.renderValidation(),
		m.input.View(),
		m.theme.Help.Render(m.help.ShortHelpView(m.keys.ShortHelp())),
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// transcript renders every exchange, then the pending message or the
// failed current response.
func (m *Model) transcript() string {
	snap := m.ctrl.Store().Snapshot()
	state := m.ctrl.State()

	var sb strings.Builder
	for _, ex := range snap.Exchanges {
		sb.WriteString(m.renderExchange(ex))
		sb.WriteString("\n\n")
	}

	switch state {
	case sender.StateSending:
		sb.WriteString(m.renderUser(m.ctrl.PendingMessage()))
		sb.WriteString("\n")
		sb.WriteString(m.theme.Status.Render("waiting for reply..."))
	case sender.StateErrored:
		sb.WriteString(m.renderUser(m.ctrl.FailedMessage()))
		sb.WriteString("\n")
		sb.WriteString(m.theme.ReplyFailed.Render(snap.CurrentResponse))
	default:
		if len(snap.Exchanges) == 0 {
			sb.WriteString(m.theme.Status.Render(emptyTranscript))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (m *Model) renderExchange(ex conversation.Exchange) string {
	header := m.renderUser(ex.Message) + "  " + m.theme.Timestamp.Render(ex.Timestamp.Format("15:04"))

	body, ok := m.rendered[ex.ID]
	if !ok {
		if ex.Response == api.ReplyUnavailable {
			body = m.theme.ReplyDegraded.Render(ex.Response)
		} else {
			body = m.theme.Reply.Render(styles.RenderOr(m.renderer, ex.Response))
		}
		m.rendered[ex.ID] = body
	}
	return header + "\n" + body
}

func (m *Model) renderUser(text string) string {
	return m.theme.UserMessage.Render("you: ") + text
}

func (m *Model) renderStatus() string {
	count := util.RuneLen(strings.TrimSpace(m.input.Value()))
	limit := m.ctrl.MaxLength()

	countStyle := m.theme.CharCount
	if count > limit {
		countStyle = m.theme.CharCountOver
	}
	counter := countStyle.Render(fmt.Sprintf("%d/%d", count, limit))

	status := ""
	switch m.ctrl.State() {
	case sender.StateSending:
		status = m.spinner.View() + " " + m.theme.Status.Render("sending")
	case sender.StateErrored:
		status = m.theme.NoticeTitle.Render("last send failed")
	default:
		if meta := m.ctrl.LastReply().Meta(); meta != "" {
			status = m.theme.Status.Render(meta)
		}
	}

	gap := max(m.width-lipgloss.Width(status)-lipgloss.Width(counter), 1)
	return status + strings.Repeat(" ", gap) + counter
}

func (m *Model) renderValidation() string {
	if m.validation == "" {
		return ""
	}
	return m.theme.ValidationBox.Render(m.validation)
}
