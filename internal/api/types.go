// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatRequest is the request body for POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the response body for POST /chat.
// Response is a pointer so an absent field can be told apart from an empty one.
type ChatResponse struct {
	Response       *string `json:"response"`
	ModelUsed      string  `json:"model_used,omitempty"`
	Timestamp      string  `json:"timestamp,omitempty"`
	Cached         bool    `json:"cached,omitempty"`
	ProcessingTime float64 `json:"processing_time,omitempty"` // seconds
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Timestamp string            `json:"timestamp,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
}

// =============================================================================
// RESULT TYPES
// =============================================================================

// ReplyUnavailable is substituted when a successful response carries no reply.
const ReplyUnavailable = "reply unavailable"

// Reply is the assistant's answer to one message.
type Reply struct {
	Text string

	// Timestamp is the server time when present and parseable, zero otherwise.
	Timestamp time.Time

	// Degraded is true when Text is the ReplyUnavailable placeholder.
	Degraded bool

	// Latency is the wall time of the call.
	Latency time.Duration

	// Model, Cached and ProcessingTime are reported by the server when it
	// knows them. Zero values mean not reported.
	Model          string
	Cached         bool
	ProcessingTime time.Duration
}

// Meta renders the server-reported details as "model · cached · 1.2s",
// skipping what is unknown.
func (r *Reply) Meta() string {
	if r == nil {
		return ""
	}
	var parts []string
	if r.Model != "" {
		parts = append(parts, r.Model)
	}
	if r.Cached {
		parts = append(parts, "cached")
	}
	if r.ProcessingTime > 0 {
		parts = append(parts, strconv.FormatFloat(r.ProcessingTime.Seconds(), 'f', 1, 64)+"s")
	}
	return strings.Join(parts, " · ")
}

// Health summarizes the backend's /health report.
type Health struct {
	Status   string
	Services map[string]string
	Uptime   string
}

// Healthy reports whether the backend described itself as healthy.
func (h *Health) Healthy() bool {
	return h != nil && h.Status == "healthy"
}
