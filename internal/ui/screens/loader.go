// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package screens loads screen implementations on first use.
//
// Each screen is registered with an Importer. The first Load starts the
// import in the background and every caller, concurrent or later, shares
// its result. A loaded screen is never imported again. While a screen is
// loading its Slot renders a placeholder; if the import fails the Slot
// reports a fault so the surrounding boundary shows its fallback.
package screens

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// ID names a screen.
type ID string

const (
	Chat     ID = "chat"
	History  ID = "history"
	Settings ID = "settings"
)

// ErrUnknownScreen is returned for an ID that was never registered.
var ErrUnknownScreen = errors.New("unknown screen")

// Handle builds a screen model. It is cheap; the expensive work happens in
// the Importer that produced it.
type Handle func() tea.Model

// Importer does the one-time work needed before a screen can be built.
type Importer func() (Handle, error)

// Status is the load state of one screen.
type Status int

const (
	StatusNotLoaded Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNotLoaded:
		return "not_loaded"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// LoadedMsg reports that a screen finished loading.
type LoadedMsg struct {
	ID     ID
	Handle Handle
	Err    error
}

// attempt is one run of an importer. handle and err are written before
// done is closed and never after.
type attempt struct {
	done   chan struct{}
	handle Handle
	err    error
}

type entry struct {
	label    string
	importer Importer
	status   Status
	current  *attempt
	imports  int
}

// Loader caches screen imports by ID. It is safe for concurrent use.
type Loader struct {
	mu      sync.Mutex
	entries map[ID]*entry
	logger  *zap.Logger
}

// NewLoader creates an empty loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		entries: make(map[ID]*entry),
		logger:  logger.Named("screens"),
	}
}

// Register adds a screen. label is shown by the placeholder while the
// screen loads. Registering an ID again replaces it and forgets any
// loaded result.
func (l *Loader) Register(id ID, label string, importer Importer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[id] = &entry{label: label, importer: importer}
}

// Load starts loading id if it is not loaded or loading yet, and returns a
// command that yields a LoadedMsg once the import finishes. A failed
// screen is retried. Load returns nil for a screen that is already loaded;
// use Get to obtain it.
func (l *Loader) Load(id ID) tea.Cmd {
	a, err := l.start(id)
	if err != nil {
		return func() tea.Msg { return LoadedMsg{ID: id, Err: err} }
	}
	if a == nil {
		return nil
	}
	return func() tea.Msg {
		<-a.done
		return LoadedMsg{ID: id, Handle: a.handle, Err: a.err}
	}
}

// Wait loads id and blocks until it is available or ctx is done.
func (l *Loader) Wait(ctx context.Context, id ID) (Handle, error) {
	a, err := l.start(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		h, _ := l.Get(id)
		return h, nil
	}
	select {
	case <-a.done:
		return a.handle, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// start returns the attempt to wait on, or nil when id is already loaded.
func (l *Loader) start(id ID) (*attempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScreen, id)
	}

	switch e.status {
	case StatusLoaded:
		return nil, nil
	case StatusLoading:
		return e.current, nil
	}

	a := &attempt{done: make(chan struct{})}
	e.status = StatusLoading
	e.current = a
	e.imports++
	l.logger.Debug("loading screen", zap.String("screen", string(id)), zap.Int("attempt", e.imports))

	go l.run(id, e, a)
	return a, nil
}

func (l *Loader) run(id ID, e *entry, a *attempt) {
	handle, err := safeImport(e.importer)
	if err == nil && handle == nil {
		err = fmt.Errorf("screen %s: importer returned no handle", id)
	}

	l.mu.Lock()
	if err != nil {
		e.status = StatusFailed
		l.logger.Warn("screen load failed", zap.String("screen", string(id)), zap.Error(err))
	} else {
		e.status = StatusLoaded
		l.logger.Debug("screen loaded", zap.String("screen", string(id)))
	}
	a.handle, a.err = handle, err
	l.mu.Unlock()

	close(a.done)
}

func safeImport(importer Importer) (h Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			h, err = nil, fmt.Errorf("screen import panicked: %v", r)
		}
	}()
	return importer()
}

// Get returns the handle of a loaded screen.
func (l *Loader) Get(id ID) (Handle, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[id]
	if !ok || e.status != StatusLoaded {
		return nil, false
	}
	return e.current.handle, true
}

// Status returns the load state of id.
func (l *Loader) Status(id ID) Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[id]; ok {
		return e.status
	}
	return StatusNotLoaded
}

// Imports returns how many times the importer for id has been run.
func (l *Loader) Imports(id ID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[id]; ok {
		return e.imports
	}
	return 0
}

// Placeholder returns the text shown while id loads.
func (l *Loader) Placeholder(id ID) string {
	l.mu.Lock()
	label := string(id)
	if e, ok := l.entries[id]; ok && e.label != "" {
		label = e.label
	}
	l.mu.Unlock()
	return "loading " + label + "..."
}
