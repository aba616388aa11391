// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared across tauros.
//
// File Operations:
//   - AtomicWriteFile: crash-safe write (temp file, fsync, rename)
//
// Text:
//   - Preview: single-line, display-width aware preview of a message
//   - Width: terminal column width of a string
//   - RuneLen: number of runes in a string
package util
