// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sender

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/tauros-ai/tauros-tui/internal/api"
	"github.com/tauros-ai/tauros-tui/internal/conversation"
)

// DefaultMaxLength is the longest accepted message, in characters.
const DefaultMaxLength = 1000

// Validation errors. These never reach the chat client.
var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message is too long")
	ErrBusy           = errors.New("a message is already being sent")
)

// =============================================================================
// STATE
// =============================================================================

// State gates whether a new send may start.
type State int

const (
	StateIdle State = iota
	StateSending
	StateErrored
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateErrored:
		return "errored"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// =============================================================================
// MESSAGES AND NOTICES
// =============================================================================

// Client is the part of api.Client the controller needs.
type Client interface {
	Send(ctx context.Context, text string) (*api.Reply, error)
}

// ResultMsg carries the outcome of one send back to the update loop.
// Exactly one of Reply and Err is set.
type ResultMsg struct {
	Seq     uint64
	Message string
	Reply   *api.Reply
	Err     *api.ClassifiedError

	// Panic is set when the send panicked. Err is then KindUnknown and
	// Stack holds the trace.
	Panic any
	Stack []byte
}

// ResolvedMsg tells every screen that a send finished and the store or
// input buffer may have changed.
type ResolvedMsg struct {
	Seq    uint64
	State  State
	Notice Notice
}

// Broadcast marks ResolvedMsg for delivery to all screens.
func (ResolvedMsg) Broadcast() {}

// NoticeKind classifies a notice shown to the user.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeValidation
	NoticeError
)

// Notice is a one-line message for the user. Blocking notices must be
// acknowledged before the UI continues.
type Notice struct {
	Kind     NoticeKind
	Text     string
	Blocking bool
}

// Empty reports whether there is nothing to show.
func (n Notice) Empty() bool {
	return n.Kind == NoticeNone
}

// NoticeMsg asks the UI to show a notice.
type NoticeMsg struct {
	Notice Notice
}

// ShowNotice wraps a notice in a command.
func ShowNotice(n Notice) tea.Cmd {
	if n.Empty() {
		return nil
	}
	return func() tea.Msg { return NoticeMsg{Notice: n} }
}

// NoticeFor converts a Submit error into the notice to display.
func NoticeFor(err error, maxLength int) Notice {
	switch {
	case err == nil:
		return Notice{}
	case errors.Is(err, ErrEmptyMessage):
		return Notice{Kind: NoticeValidation, Text: "please type a message first."}
	case errors.Is(err, ErrMessageTooLong):
		return Notice{Kind: NoticeValidation, Text: "message too long (max " + strconv.Itoa(maxLength) + " characters)."}
	case errors.Is(err, ErrBusy):
		return Notice{Kind: NoticeValidation, Text: "still waiting for the previous reply."}
	default:
		return Notice{Kind: NoticeError, Text: api.UserMessage(err), Blocking: true}
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the send state, the input buffer and the conversation
// store. It must only be used from the UI update loop.
type Controller struct {
	client    Client
	store     *conversation.Store
	logger    *zap.Logger
	maxLength int

	state    State
	input    string
	seq      uint64
	inflight uint64
	lastErr  *api.ClassifiedError
	lastRep  *api.Reply
	pending  string
	failed   string
}

// Option configures a Controller.
type Option func(*Controller)

// WithMaxLength sets the maximum message length in characters.
func WithMaxLength(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxLength = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a controller. A nil store gets a fresh one.
func New(client Client, store *conversation.Store, opts ...Option) *Controller {
	if store == nil {
		store = conversation.NewStore()
	}
	c := &Controller{
		client:    client,
		store:     store,
		logger:    zap.NewNop(),
		maxLength: DefaultMaxLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("sender")
	return c
}

// State returns the current send state.
func (c *Controller) State() State { return c.state }

// CanSubmit reports whether the send action is enabled.
func (c *Controller) CanSubmit() bool { return c.state != StateSending }

// Store returns the conversation store.
func (c *Controller) Store() *conversation.Store { return c.store }

// MaxLength returns the message length limit.
func (c *Controller) MaxLength() int { return c.maxLength }

// SetMaxLength changes the limit for later submits. Non-positive values
// are ignored.
func (c *Controller) SetMaxLength(n int) {
	if n > 0 {
		c.maxLength = n
	}
}

// Input returns the input buffer.
func (c *Controller) Input() string { return c.input }

// SetInput replaces the input buffer.
func (c *Controller) SetInput(text string) { c.input = text }

// LastError returns the classified error of the most recent failed send,
// or nil if the last send succeeded.
func (c *Controller) LastError() *api.ClassifiedError { return c.lastErr }

// LastReply returns the most recent successful reply, or nil.
func (c *Controller) LastReply() *api.Reply { return c.lastRep }

// PendingMessage returns the message being sent, or "" when idle.
func (c *Controller) PendingMessage() string {
	if c.state != StateSending {
		return ""
	}
	return c.pending
}

// FailedMessage returns the message of the most recent failed send as it
// was sent, or "" if the last send succeeded.
func (c *Controller) FailedMessage() string { return c.failed }

// SubmitInput submits the input buffer.
func (c *Controller) SubmitInput() (tea.Cmd, error) {
	return c.Submit(c.input)
}

// Submit validates text and, if accepted, enters Sending and returns the
// command that performs the call. Rejected submits change nothing.
func (c *Controller) Submit(text string) (tea.Cmd, error) {
	if c.state == StateSending {
		c.logger.Debug("submit rejected while sending")
		return nil, ErrBusy
	}

	message, err := c.validate(text)
	if err != nil {
		c.logger.Debug("submit rejected", zap.Error(err))
		return nil, err
	}

	c.input = text
	c.seq++
	c.inflight = c.seq
	c.pending = message
	c.transition(StateSending)

	seq, client := c.seq, c.client
	return func() (msg tea.Msg) {
		// A panicking send still resolves, so the controller leaves Sending.
		defer func() {
			if r := recover(); r != nil {
				msg = ResultMsg{
					Seq:     seq,
					Message: message,
					Err:     api.AsClassified(fmt.Errorf("send panicked: %v", r)),
					Panic:   r,
					Stack:   debug.Stack(),
				}
			}
		}()
		reply, err := client.Send(context.Background(), message)
		if err != nil {
			return ResultMsg{Seq: seq, Message: message, Err: api.AsClassified(err)}
		}
		return ResultMsg{Seq: seq, Message: message, Reply: reply}
	}, nil
}

// Resolve applies a send result and returns the notice to show, if any.
// Results that do not match the in-flight send are ignored.
func (c *Controller) Resolve(msg ResultMsg) Notice {
	if c.state != StateSending || msg.Seq != c.inflight {
		c.logger.Warn("ignoring stale result",
			zap.Uint64("seq", msg.Seq),
			zap.Uint64("inflight", c.inflight),
			zap.Stringer("state", c.state))
		return Notice{}
	}
	c.inflight = 0
	c.pending = ""

	if msg.Err == nil && msg.Reply == nil {
		msg.Err = api.AsClassified(errors.New("empty result"))
	}

	if msg.Err != nil {
		c.lastErr = msg.Err
		c.failed = msg.Message
		c.store.SetCurrentResponse(msg.Err.UserMessage)
		c.transition(StateErrored)
		c.logger.Info("send failed",
			zap.Stringer("kind", msg.Err.Kind),
			zap.Bool("retryable", msg.Err.Retryable),
			zap.Bool("panic", msg.Panic != nil))
		return Notice{Kind: NoticeError, Text: msg.Err.UserMessage, Blocking: true}
	}

	c.lastErr = nil
	c.lastRep = msg.Reply
	c.failed = ""
	ex := c.store.AppendExchange(msg.Message, msg.Reply.Text)
	c.input = ""
	c.transition(StateIdle)
	c.logger.Info("exchange recorded",
		zap.String("id", ex.ID),
		zap.Uint64("seq", ex.Seq),
		zap.Duration("latency", msg.Reply.Latency),
		zap.Bool("degraded", msg.Reply.Degraded))
	return Notice{}
}

// validate trims and normalizes text and enforces the length limit.
func (c *Controller) validate(text string) (string, error) {
	message := norm.NFC.String(strings.TrimSpace(text))
	if message == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > c.maxLength {
		return "", ErrMessageTooLong
	}
	return message, nil
}

func (c *Controller) transition(to State) {
	if c.state == to {
		return
	}
	c.logger.Debug("state change", zap.Stringer("from", c.state), zap.Stringer("to", to))
	c.state = to
}
