// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net"
	"strconv"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// Kind categorizes a failed call.
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindNetworkUnreachable
	KindServerFault
	KindInvalidRequest
)

// String returns the stable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindServerFault:
		return "server_fault"
	case KindInvalidRequest:
		return "invalid_request"
	default:
		return "unknown"
	}
}

// User-facing messages. These are the only failure texts ever shown.
const (
	MsgTimeout            = "request timed out, retry."
	MsgNetworkUnreachable = "cannot reach server."
	MsgServerFault        = "internal server error."
	MsgInvalidRequest     = "invalid request."
	MsgUnknown            = "contact failed unexpectedly."
)

// =============================================================================
// FAILURE INPUT
// =============================================================================

// Failure describes a failed network call before classification.
// Status is 0 when no HTTP response was received.
type Failure struct {
	Status    int
	Timeout   bool
	Transport bool
	Cause     error
}

// FailureFromError builds a Failure from an error returned by the HTTP
// transport. Deadline expiry and net timeouts set Timeout, anything else is
// a transport-level failure.
func FailureFromError(err error) Failure {
	if isTimeout(err) {
		return Failure{Timeout: true, Cause: err}
	}
	return Failure{Transport: true, Cause: err}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// =============================================================================
// CLASSIFIED ERROR
// =============================================================================

// ClassifiedError is a failure normalized to one stable kind.
// It is immutable once produced.
type ClassifiedError struct {
	Kind        Kind
	Retryable   bool
	UserMessage string
	Status      int
	Cause       error
}

// Error returns a diagnostic string for logs. It is never shown to the user;
// use UserMessage for that.
func (e *ClassifiedError) Error() string {
	msg := "api: " + e.Kind.String()
	if e.Status != 0 {
		msg += " (status " + strconv.Itoa(e.Status) + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// Classify maps a failure to exactly one kind. Rules apply in priority
// order: timeout, no status or transport failure, 5xx, 4xx, anything else.
func Classify(f Failure) *ClassifiedError {
	switch {
	case f.Timeout:
		return newClassified(KindTimeout, f)
	case f.Transport || f.Status == 0:
		return newClassified(KindNetworkUnreachable, f)
	case f.Status >= 500:
		return newClassified(KindServerFault, f)
	case f.Status >= 400:
		return newClassified(KindInvalidRequest, f)
	default:
		return newClassified(KindUnknown, f)
	}
}

func newClassified(kind Kind, f Failure) *ClassifiedError {
	return &ClassifiedError{
		Kind:        kind,
		Retryable:   kind == KindTimeout || kind == KindNetworkUnreachable || kind == KindServerFault,
		UserMessage: messageFor(kind),
		Status:      f.Status,
		Cause:       f.Cause,
	}
}

func messageFor(kind Kind) string {
	switch kind {
	case KindTimeout:
		return MsgTimeout
	case KindNetworkUnreachable:
		return MsgNetworkUnreachable
	case KindServerFault:
		return MsgServerFault
	case KindInvalidRequest:
		return MsgInvalidRequest
	default:
		return MsgUnknown
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// AsClassified returns err as a *ClassifiedError. Errors that did not come
// through the classifier are reported as KindUnknown.
func AsClassified(err error) *ClassifiedError {
	if err == nil {
		return nil
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce
	}
	return &ClassifiedError{
		Kind:        KindUnknown,
		UserMessage: MsgUnknown,
		Cause:       err,
	}
}

// IsKind reports whether err is a classified error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// UserMessage returns the pre-approved message for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return AsClassified(err).UserMessage
}
