// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tauros-ai/tauros-tui/internal/api"
	"github.com/tauros-ai/tauros-tui/internal/config"
	"github.com/tauros-ai/tauros-tui/internal/conversation"
	"github.com/tauros-ai/tauros-tui/internal/sender"
	"github.com/tauros-ai/tauros-tui/internal/ui/boundary"
	"github.com/tauros-ai/tauros-tui/internal/ui/nav"
	"github.com/tauros-ai/tauros-tui/internal/ui/screens"
	"github.com/tauros-ai/tauros-tui/internal/ui/styles"
)

type fakeClient struct {
	reply     *api.Reply
	err       error
	sent      []string
	reconfig  []*api.ClientConfig
	panicNext bool
}

func (f *fakeClient) Send(_ context.Context, text string) (*api.Reply, error) {
	f.sent = append(f.sent, text)
	if f.panicNext {
		f.panicNext = false
		panic("connection pool corrupted")
	}
	return f.reply, f.err
}

func (f *fakeClient) Reconfigure(cfg *api.ClientConfig) {
	f.reconfig = append(f.reconfig, cfg)
}

func (f *fakeClient) Health(context.Context) (*api.Health, error) {
	return &api.Health{Status: "healthy"}, nil
}

type harness struct {
	app    *Model
	ctrl   *sender.Controller
	client *fakeClient
	loader *screens.Loader
	faults []string
}

func newHarness(t *testing.T, client *fakeClient) *harness {
	t.Helper()
	h := &harness{client: client}

	cfg := config.Default()
	cfg.UI.Markdown = false
	theme := styles.NewTheme(styles.ModeDark)

	h.ctrl = sender.New(client, conversation.NewStore())
	h.loader = screens.NewLoader(nil)
	reporter := boundary.ReporterFunc(func(region string, _ error, _ []byte) {
		h.faults = append(h.faults, region)
	})
	host := nav.NewHost(h.loader, theme, reporter, nil, nav.ChatRoute{})

	h.app = New(Options{
		Controller: h.ctrl,
		Client:     client,
		Config:     cfg,
		Host:       host,
		Theme:      theme,
	})
	RegisterScreens(h.loader, ScreenDeps{
		Controller: h.ctrl,
		Config:     h.app.Config,
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Health:     client,
		Theme:      theme,
	})

	h.run(h.app.Init())
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	return h
}

// send delivers msg and then every message its commands produce, the way
// the bubbletea runtime would. Ticks are dropped to keep the loop finite.
func (h *harness) send(msg tea.Msg) {
	_, cmd := h.app.Update(msg)
	h.run(cmd)
}

func (h *harness) run(cmd tea.Cmd) {
	for _, msg := range drain(cmd) {
		switch msg.(type) {
		case nil:
			continue
		case tea.QuitMsg:
			continue
		}
		if isTick(msg) {
			continue
		}
		h.send(msg)
	}
}

func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func isTick(msg tea.Msg) bool {
	switch msg.(type) {
	case screens.LoadedMsg, sender.ResultMsg, boundary.FaultMsg, tea.WindowSizeMsg:
		return false
	}
	// Spinner ticks, cursor blinks and the like.
	_, isKey := msg.(tea.KeyMsg)
	return !isKey
}

func typeAndSend(h *harness, text string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestApp_SuccessfulExchange(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: &api.Reply{Text: "¡Hola!"}})
	assert.Contains(t, h.app.View(), "no messages yet")

	typeAndSend(h, "hola")

	assert.Equal(t, []string{"hola"}, h.client.sent)
	assert.Equal(t, sender.StateIdle, h.ctrl.State())
	assert.Equal(t, 1, h.ctrl.Store().Len())
	assert.True(t, h.app.Notice().Empty())
	assert.Contains(t, h.app.View(), "¡Hola!")
}

func TestApp_FailureShowsBlockingNotice(t *testing.T) {
	h := newHarness(t, &fakeClient{err: api.Classify(api.Failure{Status: 500})})

	typeAndSend(h, "hola")

	assert.Equal(t, sender.StateErrored, h.ctrl.State())
	require.True(t, h.app.Notice().Blocking)
	assert.Equal(t, api.MsgServerFault, h.app.Notice().Text)
	assert.Contains(t, h.app.View(), "send failed")
	assert.Equal(t, 0, h.ctrl.Store().Len())
	assert.Equal(t, api.MsgServerFault, h.ctrl.Store().CurrentResponse())

	// Input is held until the notice is dismissed.
	h.send(tea.KeyMsg{Type: tea.KeyF2})
	assert.Equal(t, nav.ChatRoute{}, h.app.host.Current())

	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, h.app.Notice().Empty())
	assert.Len(t, h.client.sent, 1, "dismissing does not resend")
}

func TestApp_PanickingSendRecoversAfterReset(t *testing.T) {
	client := &fakeClient{reply: &api.Reply{Text: "ok"}, panicNext: true}
	h := newHarness(t, client)

	typeAndSend(h, "first")

	assert.Equal(t, []string{"chat"}, h.faults)
	assert.Equal(t, boundary.StateFaulted, h.app.host.Region(screens.Chat).State())
	assert.Equal(t, sender.StateErrored, h.ctrl.State(), "a panicked send is no longer in flight")
	require.True(t, h.app.Notice().Blocking)
	assert.Equal(t, api.MsgUnknown, h.app.Notice().Text)

	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.Equal(t, boundary.StateHealthy, h.app.host.Region(screens.Chat).State())

	typeAndSend(h, "second")

	require.Len(t, client.sent, 2, "the reset screen can send again")
	assert.Equal(t, sender.StateIdle, h.ctrl.State())
	assert.Equal(t, 1, h.ctrl.Store().Len())
	assert.Equal(t, []string{"chat"}, h.faults, "the fault is reported once")
}

func TestApp_NavigationLoadsScreensLazily(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: &api.Reply{Text: "ok"}})
	assert.Equal(t, screens.StatusLoaded, h.loader.Status(screens.Chat))
	assert.Equal(t, screens.StatusNotLoaded, h.loader.Status(screens.Settings))

	typeAndSend(h, "first")

	h.send(tea.KeyMsg{Type: tea.KeyF2})
	last, _ := h.ctrl.Store().Snapshot().Last()
	assert.Equal(t, nav.HistoryRoute{Focus: last.ID}, h.app.host.Current())
	assert.Contains(t, h.app.View(), "1 exchanges")

	h.send(tea.KeyMsg{Type: tea.KeyF3})
	assert.Equal(t, screens.StatusLoaded, h.loader.Status(screens.Settings))
	assert.Contains(t, h.app.View(), "base url")

	h.send(tea.KeyMsg{Type: tea.KeyCtrlB})
	h.send(tea.KeyMsg{Type: tea.KeyCtrlB})
	assert.Equal(t, nav.ChatRoute{}, h.app.host.Current())
	assert.Equal(t, 1, h.loader.Imports(screens.Chat))
}

func TestApp_ConfigMsgReconfiguresClient(t *testing.T) {
	client := &fakeClient{reply: &api.Reply{Text: "ok"}}
	h := newHarness(t, client)

	cfg := config.Default()
	cfg.API.BaseURL = "https://elsewhere.example.com"
	cfg.API.MaxMessageLength = 10

	h.send(settingsConfig(cfg))

	require.Len(t, client.reconfig, 1)
	assert.Equal(t, "https://elsewhere.example.com", client.reconfig[0].BaseURL)
	assert.Equal(t, 10, h.ctrl.MaxLength())
	assert.Equal(t, "https://elsewhere.example.com", h.app.Config().API.BaseURL)
}

func TestApp_ResultResolvedWhileAwayFromChat(t *testing.T) {
	client := &fakeClient{reply: &api.Reply{Text: "ok"}}
	h := newHarness(t, client)

	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hola")})
	_, cmd := h.app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, sender.StateSending, h.ctrl.State())

	// Navigate before the reply arrives.
	h.send(tea.KeyMsg{Type: tea.KeyF3})
	h.run(cmd)

	assert.Equal(t, sender.StateIdle, h.ctrl.State())
	assert.Equal(t, 1, h.ctrl.Store().Len())
}

func TestApp_QuitKey(t *testing.T) {
	h := newHarness(t, &fakeClient{})
	_, cmd := h.app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
