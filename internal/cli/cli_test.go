// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tauros-ai/tauros-tui/internal/api"
	"github.com/tauros-ai/tauros-tui/internal/config"
	"github.com/tauros-ai/tauros-tui/internal/sender"
)

// isolate points config, logs and history at a temp dir and clears
// overrides from the environment.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("TAUROS_HOME", home)
	for _, k := range []string{"TAUROS_BASE_URL", "TAUROS_USER_ID", "TAUROS_TIMEOUT_MS", "TAUROS_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	return home
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func chatServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// =============================================================================
// EXIT CODES
// =============================================================================

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitGeneralError},
		{"empty message", sender.ErrEmptyMessage, ExitUsageError},
		{"too long", fmt.Errorf("ask: %w", sender.ErrMessageTooLong), ExitUsageError},
		{"validation", config.ValidateErrors{{Field: "api.base_url", Message: "required"}}, ExitConfigError},
		{"timeout", api.Classify(api.Failure{Timeout: true}), ExitTimeoutError},
		{"unreachable", api.Classify(api.Failure{Transport: true}), ExitNetworkError},
		{"server fault", api.Classify(api.Failure{Status: 503}), ExitServerError},
		{"invalid request", api.Classify(api.Failure{Status: 422}), ExitServerError},
		{"unknown", api.Classify(api.Failure{Status: 200}), ExitGeneralError},
		{"wrapped", NewCommandError("ask", "sending", api.Classify(api.Failure{Timeout: true})), ExitTimeoutError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFor(tt.err))
		})
	}
}

func TestUserFacing_HidesDiagnostics(t *testing.T) {
	err := api.Classify(api.Failure{Status: 500, Cause: errors.New("stack trace here")})
	assert.Equal(t, api.MsgServerFault, UserFacing(err))
	assert.Equal(t, "config failed: bad", UserFacing(NewCommandError("config", "bad", nil)))
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk_JSON_Success(t *testing.T) {
	isolate(t)
	srv := chatServer(t, http.StatusOK, `{"response":"pong","timestamp":"2026-10-19T10:00:00Z","model_used":"llama3","cached":true,"processing_time":0.25}`)

	out, err := run(t, "--base-url", srv.URL, "ask", "--json", "ping")
	require.NoError(t, err)

	var res askResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "ping", res.Message)
	assert.Equal(t, "pong", res.Reply)
	assert.Equal(t, "2026-10-19T10:00:00Z", res.Timestamp)
	assert.Equal(t, "llama3", res.Model)
	assert.True(t, res.Cached)
	assert.Equal(t, int64(250), res.ProcessingTimeMS)
	assert.Nil(t, res.Error)
}

func TestAsk_JSON_ServerFault(t *testing.T) {
	isolate(t)
	srv := chatServer(t, http.StatusInternalServerError, `{"error":"db down"}`)

	out, err := run(t, "--base-url", srv.URL, "ask", "--json", "ping")
	require.Error(t, err)
	assert.Equal(t, ExitServerError, ExitCodeFor(err))

	var res askResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Error)
	assert.Equal(t, "server_fault", res.Error.Kind)
	assert.Equal(t, api.MsgServerFault, res.Error.Message)
	assert.True(t, res.Error.Retryable)
	assert.Empty(t, res.Reply)
	assert.NotContains(t, out, "db down")
}

func TestAsk_PlainOutput(t *testing.T) {
	isolate(t)
	srv := chatServer(t, http.StatusOK, `{"response":"**hi**"}`)

	out, err := run(t, "--base-url", srv.URL, "ask", "hello", "there")
	require.NoError(t, err)
	assert.Equal(t, "**hi**\n", out, "piped output is not rendered")
}

func TestAsk_Validation(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("client must not be called for an invalid message")
	}))
	defer srv.Close()

	out, err := run(t, "--base-url", srv.URL, "ask", "--json", "   ")
	require.ErrorIs(t, err, sender.ErrEmptyMessage)
	assert.Equal(t, ExitUsageError, ExitCodeFor(err))

	var res askResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Error)
	assert.Equal(t, "validation", res.Error.Kind)

	_, err = run(t, "--base-url", srv.URL, "ask", strings.Repeat("a", sender.DefaultMaxLength+1))
	assert.ErrorIs(t, err, sender.ErrMessageTooLong)
}

// =============================================================================
// HEALTH
// =============================================================================

func TestHealth_JSON(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":"healthy","services":{"db":"ok"},"uptime":"3h"}`)
	}))
	defer srv.Close()

	out, err := run(t, "--base-url", srv.URL, "health", "--json")
	require.NoError(t, err)

	var res healthResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Healthy)
	assert.Equal(t, "ok", res.Services["db"])
	assert.Equal(t, "3h", res.Uptime)
}

func TestHealth_Unreachable(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := run(t, "--base-url", url, "health")
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, ExitCodeFor(err))
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfig_SetGetPath(t *testing.T) {
	home := isolate(t)

	out, err := run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config.toml")+"\n", out)

	_, err = run(t, "config", "set", "api.user_id", "ana")
	require.NoError(t, err)

	out, err = run(t, "config", "get", "api.user_id")
	require.NoError(t, err)
	assert.Equal(t, "ana\n", out)

	cfg, err := config.ReadFile(filepath.Join(home, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "ana", cfg.API.UserID)
}

func TestConfig_SetDoesNotPersistOverrides(t *testing.T) {
	home := isolate(t)
	t.Setenv("TAUROS_BASE_URL", "http://override:1")

	_, err := run(t, "config", "set", "ui.theme", "dark")
	require.NoError(t, err)

	cfg, err := config.ReadFile(filepath.Join(home, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, config.Default().API.BaseURL, cfg.API.BaseURL)
}

func TestConfig_SetRejectsInvalid(t *testing.T) {
	isolate(t)

	_, err := run(t, "config", "set", "api.timeout_ms", "50")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, ExitCodeFor(err))

	_, err = run(t, "config", "set", "api.nope", "x")
	assert.Error(t, err)
}

// =============================================================================
// CHAT REPL
// =============================================================================

type scriptReader struct {
	lines []string
}

func (r *scriptReader) ReadInput(string) (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptReader) Close() {}

func TestChatSession(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 2 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"response":"reply one"}`)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.API.BaseURL = srv.URL
	env := &Env{Config: cfg, Logger: zap.NewNop()}

	client := api.NewClient(cfg.ClientConfig(), nil)
	defer client.Close()
	ctrl := sender.New(client, nil)

	var out bytes.Buffer
	s := &chatSession{
		ctrl:   ctrl,
		in:     &scriptReader{lines: []string{"/export", "/history", "first", "", "second", "/history", "/export json", "/export pdf", "/quit", "never"}},
		out:    &out,
		env:    env,
		logger: zap.NewNop(),

		exportDir: t.TempDir(),
	}
	require.NoError(t, s.run())

	text := out.String()
	assert.Contains(t, text, "no exchanges yet.")
	assert.Contains(t, text, "reply one")
	assert.Contains(t, text, "please type a message first.")
	assert.Contains(t, text, api.MsgInvalidRequest)
	assert.Contains(t, text, "nothing to export yet.")
	assert.Contains(t, text, "saved "+s.exportDir)
	assert.Contains(t, text, `unknown export format "pdf"`)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "empty input never reaches the server")
	assert.Equal(t, 1, ctrl.Store().Len(), "failed sends are not recorded")
}
