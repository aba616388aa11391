// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	c := NewClient(&ClientConfig{BaseURL: url, UserID: "test-user", Timeout: timeout}, nil)
	t.Cleanup(c.Close)
	return c
}

// =============================================================================
// SEND TESTS
// =============================================================================

func TestClient_Send_Success(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "test-user", r.Header.Get(HeaderUserID))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Hello, how are you?", req.Message)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"I'm well.","timestamp":"2026-10-19T10:00:00Z"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, time.Second)
	reply, err := client.Send(context.Background(), "Hello, how are you?")

	require.NoError(t, err)
	assert.Equal(t, "I'm well.", reply.Text)
	assert.False(t, reply.Degraded)
	assert.Equal(t, 2026, reply.Timestamp.Year())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "exactly one outbound call")
}

func TestClient_Send_ServerDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"hi","model_used":"llama3","cached":true,"processing_time":1.5}`))
	}))
	defer srv.Close()

	reply, err := newTestClient(t, srv.URL, time.Second).Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "llama3", reply.Model)
	assert.True(t, reply.Cached)
	assert.Equal(t, 1500*time.Millisecond, reply.ProcessingTime)
	assert.Equal(t, "llama3 · cached · 1.5s", reply.Meta())
}

func TestReply_Meta(t *testing.T) {
	assert.Equal(t, "", (*Reply)(nil).Meta())
	assert.Equal(t, "", (&Reply{Text: "x"}).Meta())
	assert.Equal(t, "fallback · 0.5s", (&Reply{Model: "fallback", ProcessingTime: 500 * time.Millisecond}).Meta())
}

func TestClient_Send_MissingReplyField(t *testing.T) {
	for name, body := range map[string]string{
		"absent": `{"timestamp":"2026-10-19T10:00:00"}`,
		"empty":  `{"response":""}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			reply, err := newTestClient(t, srv.URL, time.Second).Send(context.Background(), "hi")
			require.NoError(t, err)
			assert.Equal(t, ReplyUnavailable, reply.Text)
			assert.True(t, reply.Degraded)
		})
	}
}

func TestClient_Send_StatusClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusInternalServerError, KindServerFault},
		{http.StatusBadGateway, KindServerFault},
		{http.StatusNotFound, KindInvalidRequest},
		{http.StatusUnprocessableEntity, KindInvalidRequest},
	}

	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"detail":"nope"}`, tc.status)
			}))
			defer srv.Close()

			reply, err := newTestClient(t, srv.URL, time.Second).Send(context.Background(), "hi")
			assert.Nil(t, reply)
			require.Error(t, err)
			ce := AsClassified(err)
			assert.Equal(t, tc.kind, ce.Kind)
			assert.Equal(t, tc.status, ce.Status)
			assert.NotContains(t, ce.UserMessage, "nope", "raw server text must not reach the user")
		})
	}
}

func TestClient_Send_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, time.Second).Send(context.Background(), "hi")
	assert.True(t, IsKind(err, KindUnknown))
	assert.Equal(t, MsgUnknown, UserMessage(err))
}

func TestClient_Send_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newTestClient(t, srv.URL, 50*time.Millisecond).Send(context.Background(), "Test")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTimeout), "got %v", err)
	assert.Equal(t, MsgTimeout, UserMessage(err))
}

func TestClient_Send_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url, time.Second).Send(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetworkUnreachable), "got %v", err)
	assert.Equal(t, MsgNetworkUnreachable, UserMessage(err))
}

func TestClient_Send_BadBaseURL(t *testing.T) {
	client := newTestClient(t, "http://[::1", time.Second)
	_, err := client.Send(context.Background(), "hi")
	assert.True(t, IsKind(err, KindNetworkUnreachable))
}

// =============================================================================
// HEALTH TESTS
// =============================================================================

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy","services":{"redis":"healthy","ollama":"healthy"},"uptime":"1:00:00"}`))
	}))
	defer srv.Close()

	h, err := newTestClient(t, srv.URL, time.Second).Health(context.Background())
	require.NoError(t, err)
	assert.True(t, h.Healthy())
	assert.Equal(t, "healthy", h.Services["redis"])
	assert.Equal(t, "1:00:00", h.Uptime)
}

func TestClient_Health_Degraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, time.Second).Health(context.Background())
	assert.True(t, IsKind(err, KindServerFault))
}

func TestClient_Health_RateLimited(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 200*time.Millisecond)
	for i := 0; i < healthBurst; i++ {
		_, err := client.Health(context.Background())
		require.NoError(t, err)
	}

	_, err := client.Health(context.Background())
	assert.True(t, IsKind(err, KindTimeout), "throttled check should time out, got %v", err)
	assert.Equal(t, int32(healthBurst), atomic.LoadInt32(&calls))
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(&ClientConfig{BaseURL: "http://example.test/"}, nil)
	cfg := c.Config()
	assert.Equal(t, "http://example.test", cfg.BaseURL)
	assert.Equal(t, "tauros-tui", cfg.UserID)
	assert.Equal(t, 30*time.Second, cfg.Timeout)

	c = NewClient(nil, nil)
	assert.Equal(t, *DefaultConfig(), c.Config())
}

func TestClient_Reconfigure(t *testing.T) {
	c := NewClient(nil, nil)
	c.Reconfigure(&ClientConfig{BaseURL: "http://other.test", UserID: "u2", Timeout: time.Second})
	cfg := c.Config()
	assert.Equal(t, "http://other.test", cfg.BaseURL)
	assert.Equal(t, "u2", cfg.UserID)
	assert.Equal(t, time.Second, cfg.Timeout)

	c.Reconfigure(nil)
	assert.Equal(t, "u2", c.Config().UserID)
}
