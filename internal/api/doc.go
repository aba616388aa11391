// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Tauros assistant endpoint.
//
// The client performs exactly one outbound call per message and never
// returns raw transport errors to its callers. Every failure is normalized
// by the classifier into a *ClassifiedError carrying one of five stable
// kinds and a pre-approved, user-facing message.
//
// # Key Types
//
//   - Client: stateless HTTP client for POST /chat and GET /health
//   - Failure: the raw facts about a failed call (status, timeout, transport)
//   - ClassifiedError: the normalized failure handed to the UI
//   - Reply: the assistant's answer for one message
//
// # Usage
//
//	client := api.NewClient(&api.ClientConfig{
//	    BaseURL: "http://127.0.0.1:8000",
//	    UserID:  "tauros-tui",
//	}, logger)
//	reply, err := client.Send(ctx, "Hello, how are you?")
//	if err != nil {
//	    fmt.Println(api.UserMessage(err))
//	    return
//	}
//	fmt.Println(reply.Text)
//
// Retry policy is deliberately absent from this package; callers decide.
package api
