// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the conversation screen.
//
// The screen owns no conversation state. It reads the exchange log and the
// current response from the send controller's store, mirrors its textarea
// into the controller's input buffer, and asks the controller to submit.
// Send results are resolved by the app, which broadcasts
// sender.ResolvedMsg so the screen can refresh.
//
// Layout:
//
//	exchanges (viewport, scrollable with PgUp/PgDn)
//	status line (spinner while sending, character count)
//	validation notice (if the last submit was rejected)
//	input (textarea; Enter sends, Ctrl+J inserts a newline)
package chat
