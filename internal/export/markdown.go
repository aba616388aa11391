// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/tauros-ai/tauros-tui/internal/api"
	"github.com/tauros-ai/tauros-tui/internal/conversation"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a conversation to Markdown format.
func (e *MarkdownExporter) Export(snap conversation.Snapshot) ([]byte, error) {
	if len(snap.Exchanges) == 0 {
		return nil, ErrNothingToExport
	}

	var sb strings.Builder
	first := snap.Exchanges[0]
	last := snap.Exchanges[len(snap.Exchanges)-1]
	exported := e.options.now()

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", escapeYAML(title(first.Message)))
		fmt.Fprintf(&sb, "date: %s\n", first.Timestamp.Format(time.RFC3339))
		fmt.Fprintf(&sb, "updated: %s\n", last.Timestamp.Format(time.RFC3339))
		fmt.Fprintf(&sb, "exchanges: %d\n", len(snap.Exchanges))
		fmt.Fprintf(&sb, "exported: %s\n", exported.Format(time.RFC3339))
		sb.WriteString("generator: tauros\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(title(first.Message)))

	for i, ex := range snap.Exchanges {
		if e.options.IncludeTimestamps {
			fmt.Fprintf(&sb, "### [You] <sub>%s</sub>\n\n", ex.Timestamp.Format("15:04:05"))
		} else {
			sb.WriteString("### [You]\n\n")
		}
		sb.WriteString(strings.TrimSpace(ex.Message))
		sb.WriteString("\n\n### [Tauros]\n\n")
		if ex.Response == api.ReplyUnavailable {
			fmt.Fprintf(&sb, "*%s*", ex.Response)
		} else {
			sb.WriteString(strings.TrimSpace(ex.Response))
		}
		sb.WriteString("\n\n")

		if i < len(snap.Exchanges)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	fmt.Fprintf(&sb, "*Exported from tauros on %s*\n", exported.Format("January 2, 2006 at 3:04 PM"))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// title is the first line of the opening message, cut to a heading length.
func title(message string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	runes := []rune(line)
	if len(runes) > 60 {
		return string(runes[:60]) + "..."
	}
	return line
}

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	// Only escape characters that would break formatting in titles/headings
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML quotes values that YAML would otherwise misread.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
