// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// EXCHANGE
// =============================================================================

// Exchange is one user message paired with its resolved reply.
// Exchanges are values; once appended they are never modified.
type Exchange struct {
	ID        string    `json:"id"`
	Seq       uint64    `json:"seq"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// =============================================================================
// STORE
// =============================================================================

// Store is the ordered exchange log plus the current-response slot.
type Store struct {
	exchanges []Exchange
	current   string
	seq       uint64
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for exchange timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		exchanges: make([]Exchange, 0, 32),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AppendExchange records a resolved message/response pair and makes the
// response current. Timestamps never go backwards, even if the clock does.
func (s *Store) AppendExchange(message, response string) Exchange {
	ts := s.now()
	if n := len(s.exchanges); n > 0 && ts.Before(s.exchanges[n-1].Timestamp) {
		ts = s.exchanges[n-1].Timestamp
	}

	s.seq++
	ex := Exchange{
		ID:        uuid.NewString(),
		Seq:       s.seq,
		Message:   message,
		Response:  response,
		Timestamp: ts,
	}
	s.exchanges = append(s.exchanges, ex)
	s.current = response
	return ex
}

// SetCurrentResponse replaces the current-response slot without touching
// the log.
func (s *Store) SetCurrentResponse(text string) {
	s.current = text
}

// CurrentResponse returns the current-response slot.
func (s *Store) CurrentResponse() string {
	return s.current
}

// Len returns the number of exchanges in the log.
func (s *Store) Len() int {
	return len(s.exchanges)
}

// Snapshot returns a copy of the log and the current response.
func (s *Store) Snapshot() Snapshot {
	exchanges := make([]Exchange, len(s.exchanges))
	copy(exchanges, s.exchanges)
	return Snapshot{
		Exchanges:       exchanges,
		CurrentResponse: s.current,
	}
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is a point-in-time view of a Store. It shares nothing with the
// store it came from.
type Snapshot struct {
	Exchanges       []Exchange
	CurrentResponse string
}

// Last returns the most recent exchange.
func (s Snapshot) Last() (Exchange, bool) {
	if len(s.Exchanges) == 0 {
		return Exchange{}, false
	}
	return s.Exchanges[len(s.Exchanges)-1], true
}

// Find returns the exchange with the given ID.
func (s Snapshot) Find(id string) (int, bool) {
	for i, ex := range s.Exchanges {
		if ex.ID == id {
			return i, true
		}
	}
	return -1, false
}
