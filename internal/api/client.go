// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HeaderUserID carries the fixed identifier of this client.
const HeaderUserID = "x-user-id"

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 1 << 20

// Health checks are throttled to one per second with a small burst. Send is
// never throttled.
const (
	healthRate  = rate.Limit(1)
	healthBurst = 3
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the assistant client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://127.0.0.1:8000)
	BaseURL string

	// UserID is sent in the x-user-id header on every call (default: tauros-tui)
	UserID string

	// Timeout bounds each call end to end (default: 30s)
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://127.0.0.1:8000",
		UserID:  "tauros-tui",
		Timeout: 30 * time.Second,
	}
}

func (c *ClientConfig) withDefaults() *ClientConfig {
	out := *c
	defaults := DefaultConfig()
	if out.BaseURL == "" {
		out.BaseURL = defaults.BaseURL
	}
	out.BaseURL = strings.TrimRight(out.BaseURL, "/")
	if out.UserID == "" {
		out.UserID = defaults.UserID
	}
	if out.Timeout <= 0 {
		out.Timeout = defaults.Timeout
	}
	return &out
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends messages to the assistant endpoint.
//
// The client keeps no conversation state; each Send is independent. It is
// safe for concurrent use, and Reconfigure may be called while a call is in
// flight (the call keeps the configuration it started with).
type Client struct {
	mu         sync.RWMutex
	config     *ClientConfig
	httpClient *http.Client
	logger     *zap.Logger

	healthLimiter *rate.Limiter
}

// NewClient creates a client. A nil config uses DefaultConfig, a nil logger
// discards log output.
func NewClient(config *ClientConfig, logger *zap.Logger) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config = config.withDefaults()
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.Named("api"),

		healthLimiter: rate.NewLimiter(healthRate, healthBurst),
	}
}

// Config returns a copy of the active configuration.
func (c *Client) Config() ClientConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return *c.config
}

// Reconfigure swaps the configuration used by subsequent calls.
func (c *Client) Reconfigure(config *ClientConfig) {
	if config == nil {
		return
	}
	config = config.withDefaults()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = config
	c.httpClient = &http.Client{Timeout: config.Timeout}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.httpClient.CloseIdleConnections()
}

func (c *Client) snapshot() (*ClientConfig, *http.Client) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config, c.httpClient
}

// =============================================================================
// CHAT
// =============================================================================

// Send posts one message and returns the reply. Every error returned is a
// *ClassifiedError; expected network failures never escape unclassified.
func (c *Client) Send(ctx context.Context, text string) (*Reply, error) {
	config, httpClient := c.snapshot()

	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	body, err := json.Marshal(ChatRequest{Message: text})
	if err != nil {
		return nil, c.fail("chat", AsClassified(err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.BaseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, c.fail("chat", Classify(Failure{Transport: true, Cause: err}))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderUserID, config.UserID)

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, c.fail("chat", Classify(FailureFromError(err)))
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail("chat", Classify(Failure{Status: resp.StatusCode}))
	}

	var result ChatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&result); err != nil {
		f := Failure{Status: resp.StatusCode, Cause: err}
		if isTimeout(err) || ctx.Err() != nil {
			f.Timeout = true
		}
		return nil, c.fail("chat", Classify(f))
	}

	reply := &Reply{
		Text:    ReplyUnavailable,
		Latency: time.Since(start),
	}
	if result.Response != nil && strings.TrimSpace(*result.Response) != "" {
		reply.Text = *result.Response
	} else {
		reply.Degraded = true
		c.logger.Warn("reply field missing, using placeholder")
	}
	if result.Timestamp != "" {
		if ts, err := parseTimestamp(result.Timestamp); err == nil {
			reply.Timestamp = ts
		}
	}
	reply.Model = result.ModelUsed
	reply.Cached = result.Cached
	if result.ProcessingTime > 0 {
		reply.ProcessingTime = time.Duration(result.ProcessingTime * float64(time.Second))
	}

	c.logger.Debug("chat call succeeded",
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", reply.Latency),
		zap.String("model", reply.Model),
		zap.Bool("cached", reply.Cached),
		zap.Bool("degraded", reply.Degraded))
	return reply, nil
}

// =============================================================================
// HEALTH
// =============================================================================

// Health queries GET /health. Failures are classified like Send.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	config, httpClient := c.snapshot()

	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	// A wait that cannot finish before the deadline counts as a timeout.
	if err := c.healthLimiter.Wait(ctx); err != nil {
		return nil, c.fail("health", Classify(Failure{Timeout: true, Cause: err}))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.BaseURL+"/health", nil)
	if err != nil {
		return nil, c.fail("health", Classify(Failure{Transport: true, Cause: err}))
	}
	req.Header.Set(HeaderUserID, config.UserID)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, c.fail("health", Classify(FailureFromError(err)))
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, c.fail("health", Classify(Failure{Status: resp.StatusCode}))
	}

	var result HealthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&result); err != nil {
		return nil, c.fail("health", Classify(Failure{Status: resp.StatusCode, Cause: err}))
	}

	return &Health{
		Status:   result.Status,
		Services: result.Services,
		Uptime:   result.Uptime,
	}, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Client) fail(op string, ce *ClassifiedError) *ClassifiedError {
	c.logger.Warn("call failed",
		zap.String("op", op),
		zap.Stringer("kind", ce.Kind),
		zap.Int("status", ce.Status),
		zap.Bool("retryable", ce.Retryable),
		zap.NamedError("cause", ce.Cause))
	return ce
}

// parseTimestamp accepts RFC 3339 and the naive ISO form the backend emits.
func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	ts, err := time.Parse("2006-01-02T15:04:05.999999", s)
	if err != nil {
		return time.Time{}, errors.New("unrecognized timestamp: " + s)
	}
	return ts, nil
}

func drainAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxBodyBytes))
	r.Close()
}
