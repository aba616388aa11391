// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation holds the in-memory log of exchanged messages.
//
// A Store keeps an ordered, append-only sequence of Exchanges plus a
// transient "current response" slot: the text shown prominently in the chat
// screen. The slot is separate from the log, so an error message can be
// displayed without becoming history.
//
// The store has a single writer (the send controller, running on the UI
// update loop) and is not safe for concurrent mutation. Renderers read it
// through Snapshot, which returns a point-in-time copy.
package conversation
