// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sender orchestrates one chat request at a time.
//
// The Controller validates input, moves between Idle, Sending and Errored,
// hands the network call to a Bubble Tea command, and applies the result to
// the conversation store when the command's ResultMsg comes back through the
// update loop. All state changes happen on the update loop; the command only
// performs the call.
//
//	Idle --Submit(text)--> Sending --success--> Idle
//	                              \--failure--> Errored --Submit(text)--> Sending
//
// While Sending, further submits are rejected with ErrBusy. Nothing is queued
// and nothing is cancelled; the client's timeout is the only bound on a call.
package sender
