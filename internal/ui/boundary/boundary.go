// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package boundary isolates faults in one region of the TUI.
//
// A Boundary wraps a tea.Model. A panic raised while the child initialises,
// updates, renders, or runs one of its commands is caught, reported once,
// and replaces the region with a static fallback. The rest of the program
// keeps running. The region stays faulted until the user resets it.
package boundary

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tauros-ai/tauros-tui/internal/ui/styles"
)

// DefaultFallback is shown when no fallback message is configured.
const DefaultFallback = "something went wrong in this screen."

// State is the health of a boundary.
type State int

const (
	StateHealthy State = iota
	StateFaulted
)

func (s State) String() string {
	if s == StateFaulted {
		return "faulted"
	}
	return "healthy"
}

// Factory builds a fresh child. It is called once by New and again on
// every Reset.
type Factory func() tea.Model

// =============================================================================
// FAULTS
// =============================================================================

// PanicError is a recovered panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// FaultMsg reports a fault raised inside a region. Commands wrapped by a
// boundary return it when they panic; children may also return it directly.
type FaultMsg struct {
	Region string
	Fault  error
}

// Faulter is implemented by children that can enter a failed state without
// panicking. The boundary checks it after every child update.
type Faulter interface {
	Fault() error
}

// Raise returns a command that faults region with err.
func Raise(region string, err error) tea.Cmd {
	return func() tea.Msg { return FaultMsg{Region: region, Fault: err} }
}

// =============================================================================
// REPORTING
// =============================================================================

// Reporter receives each fault exactly once.
type Reporter interface {
	ReportFault(region string, fault error, stack []byte)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(region string, fault error, stack []byte)

// ReportFault implements Reporter.
func (f ReporterFunc) ReportFault(region string, fault error, stack []byte) {
	f(region, fault, stack)
}

// ZapReporter logs faults at error level.
type ZapReporter struct {
	logger *zap.Logger
}

// NewZapReporter creates a reporter that logs through logger.
func NewZapReporter(logger *zap.Logger) *ZapReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapReporter{logger: logger.Named("boundary")}
}

// ReportFault implements Reporter.
func (r *ZapReporter) ReportFault(region string, fault error, stack []byte) {
	fields := []zap.Field{zap.String("region", region), zap.Error(fault)}
	if len(stack) > 0 {
		fields = append(fields, zap.ByteString("stack", stack))
	}
	r.logger.Error("region faulted", fields...)
}

// =============================================================================
// BOUNDARY
// =============================================================================

// Boundary is a tea.Model that hosts one child region.
type Boundary struct {
	region     string
	factory    Factory
	fallback   string
	resettable bool
	reporter   Reporter
	theme      *styles.Theme

	child tea.Model
	state State
	fault error

	// Last size seen, replayed to a rebuilt child.
	size *tea.WindowSizeMsg
}

// Option configures a Boundary.
type Option func(*Boundary)

// WithFallback sets the static message shown while faulted.
func WithFallback(message string) Option {
	return func(b *Boundary) {
		if strings.TrimSpace(message) != "" {
			b.fallback = message
		}
	}
}

// WithReporter sets the fault reporter.
func WithReporter(r Reporter) Option {
	return func(b *Boundary) {
		if r != nil {
			b.reporter = r
		}
	}
}

// WithReset controls whether the user may reset the region (key "r").
func WithReset(enabled bool) Option {
	return func(b *Boundary) { b.resettable = enabled }
}

// WithTheme styles the fallback view.
func WithTheme(t *styles.Theme) Option {
	return func(b *Boundary) { b.theme = t }
}

// New builds a boundary named region around the model made by factory.
// A factory that panics leaves the boundary faulted.
func New(region string, factory Factory, opts ...Option) *Boundary {
	b := &Boundary{
		region:     region,
		factory:    factory,
		fallback:   DefaultFallback,
		resettable: true,
		reporter:   ReporterFunc(func(string, error, []byte) {}),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.build()
	return b
}

// Region returns the boundary's name.
func (b *Boundary) Region() string { return b.region }

// State returns the current health.
func (b *Boundary) State() State { return b.state }

// Fault returns the fault that tripped the boundary, or nil.
func (b *Boundary) Fault() error { return b.fault }

// Child returns the hosted model. It is nil while faulted.
func (b *Boundary) Child() tea.Model {
	if b.state == StateFaulted {
		return nil
	}
	return b.child
}

// Init implements tea.Model.
func (b *Boundary) Init() tea.Cmd {
	if b.state == StateFaulted {
		return nil
	}
	var cmd tea.Cmd
	b.guard(func() { cmd = b.child.Init() })
	return b.wrap(cmd)
}

// Update implements tea.Model.
func (b *Boundary) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		b.size = &size
	}

	if fm, ok := msg.(FaultMsg); ok {
		if fm.Region == b.region {
			var stack []byte
			var pe *PanicError
			if errors.As(fm.Fault, &pe) {
				stack = pe.Stack
			}
			b.trip(fm.Fault, stack)
		}
		return b, nil
	}

	if b.state == StateFaulted {
		if k, ok := msg.(tea.KeyMsg); ok && b.resettable && k.String() == "r" {
			return b, b.Reset()
		}
		return b, nil
	}

	var cmd tea.Cmd
	b.guard(func() { b.child, cmd = b.child.Update(msg) })
	if b.state == StateFaulted {
		return b, nil
	}

	if f, ok := b.child.(Faulter); ok {
		if err := f.Fault(); err != nil {
			b.trip(err, nil)
			return b, nil
		}
	}
	return b, b.wrap(cmd)
}

// View implements tea.Model.
func (b *Boundary) View() string {
	if b.state == StateFaulted {
		return b.fallbackView()
	}
	var out string
	b.guard(func() { out = b.child.View() })
	if b.state == StateFaulted {
		return b.fallbackView()
	}
	return out
}

// Reset rebuilds the child from the factory and returns the region to
// healthy. The returned command is the new child's Init, followed by the
// last window size if one was seen.
func (b *Boundary) Reset() tea.Cmd {
	b.state = StateHealthy
	b.fault = nil
	b.build()
	if b.state == StateFaulted {
		return nil
	}

	initCmd := b.Init()
	if b.size == nil {
		return initCmd
	}
	size := *b.size
	return tea.Batch(initCmd, func() tea.Msg { return size })
}

func (b *Boundary) build() {
	b.guard(func() {
		b.child = b.factory()
		if b.child == nil {
			panic("boundary factory returned nil model")
		}
	})
}

// guard runs fn and converts a panic into a fault.
func (b *Boundary) guard(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			b.trip(&PanicError{Value: r, Stack: stack}, stack)
		}
	}()
	fn()
}

func (b *Boundary) trip(fault error, stack []byte) {
	if b.state == StateFaulted {
		return
	}
	if fault == nil {
		fault = fmt.Errorf("region %s faulted", b.region)
	}
	b.state = StateFaulted
	b.fault = fault
	b.child = nil
	b.reporter.ReportFault(b.region, fault, stack)
}

// wrap makes cmd report panics as a FaultMsg for this region instead of
// crashing the program.
func (b *Boundary) wrap(cmd tea.Cmd) tea.Cmd {
	return wrapCmd(b.region, cmd)
}

// wrapCmd guards cmd. Batches are unwrapped so each member is guarded.
func wrapCmd(region string, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = FaultMsg{Region: region, Fault: &PanicError{Value: r, Stack: debug.Stack()}}
			}
		}()
		msg = cmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			out := make(tea.BatchMsg, 0, len(batch))
			for _, c := range batch {
				if c != nil {
					out = append(out, wrapCmd(region, c))
				}
			}
			return out
		}
		return msg
	}
}

func (b *Boundary) fallbackView() string {
	var sb strings.Builder
	title := b.region + " stopped working"
	if b.theme != nil {
		sb.WriteString(b.theme.FallbackTitle.Render(title))
	} else {
		sb.WriteString(title)
	}
	sb.WriteString("\n\n")
	sb.WriteString(b.fallback)
	if b.resettable {
		sb.WriteString("\n\npress r to reload this screen")
	}

	if b.theme != nil {
		return b.theme.FallbackBox.Render(sb.String())
	}
	return sb.String()
}
