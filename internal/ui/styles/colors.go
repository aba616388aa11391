// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// All colours are AdaptiveColor so light and dark terminals both read well.

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Violet - replies, active tab, selections
var Violet = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Teal - brand, user messages
var Teal = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}

// Green - healthy backend, saved settings
var Green = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Red - failed sends, faulted regions
var Red = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}

// Orange - validation notices, degraded replies
var Orange = lipgloss.AdaptiveColor{Light: "#C2410C", Dark: "#FB923C"}

// =============================================================================
// SURFACE AND TEXT
// =============================================================================

// Panel - header and notice backgrounds
var Panel = lipgloss.AdaptiveColor{Light: "#F4F4F5", Dark: "#1F1F2B"}

// Border - separators and box outlines
var Border = lipgloss.AdaptiveColor{Light: "#D4D4D8", Dark: "#3F3F50"}

// Text - body text
var Text = lipgloss.AdaptiveColor{Light: "#18181B", Dark: "#E4E4E7"}

// TextDim - labels, help lines
var TextDim = lipgloss.AdaptiveColor{Light: "#71717A", Dark: "#A1A1AA"}

// TextFaint - timestamps, placeholders
var TextFaint = lipgloss.AdaptiveColor{Light: "#A1A1AA", Dark: "#71717A"}

// TextOnAccent - text drawn on an accent background
var TextOnAccent = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#18181B"}
