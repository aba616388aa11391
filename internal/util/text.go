// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Ellipsis marks a truncated preview.
const Ellipsis = "…"

// Preview flattens s onto one line (runs of whitespace become a single
// space) and truncates it to at most width terminal columns. Wide runes
// (CJK, emoji) count as two columns and are never split.
func Preview(s string, width int) string {
	if width <= 0 {
		return ""
	}
	flat := strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(flat, width, Ellipsis)
}

// Width returns the number of terminal columns s occupies.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// PadRight pads s with spaces to width columns. Longer strings are
// returned unchanged.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
