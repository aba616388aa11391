// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the in-memory conversation to a file.
//
// Two formats are supported:
//
//	md     Markdown with a YAML front matter header
//	json   the exchanges as a JSON document
//
// Export is a one-way dump requested by the user; nothing reads these
// files back.
//
// Usage:
//
//	path, err := export.WriteFile(store.Snapshot(), export.NewMarkdownExporter(nil), nil)
package export
