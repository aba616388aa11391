// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/tauros-ai/tauros-tui/internal/api"
	"github.com/tauros-ai/tauros-tui/internal/config"
	"github.com/tauros-ai/tauros-tui/internal/sender"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the backend could not be reached
	ExitNetworkError = 5
	// ExitTimeoutError indicates the call timed out
	ExitTimeoutError = 8
	// ExitServerError indicates the backend rejected or failed the request
	ExitServerError = 9
)

// CommandError is a failed command with context.
type CommandError struct {
	Command string
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Command, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Command, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a CommandError.
func NewCommandError(command, reason string, err error) error {
	return &CommandError{Command: command, Reason: reason, Err: err}
}

// ExitCodeFor maps an error to a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var verrs config.ValidateErrors
	var verr config.ValidationError
	if errors.As(err, &verrs) || errors.As(err, &verr) {
		return ExitConfigError
	}

	if errors.Is(err, sender.ErrEmptyMessage) || errors.Is(err, sender.ErrMessageTooLong) {
		return ExitUsageError
	}

	var ce *api.ClassifiedError
	if errors.As(err, &ce) {
		switch ce.Kind {
		case api.KindTimeout:
			return ExitTimeoutError
		case api.KindNetworkUnreachable:
			return ExitNetworkError
		case api.KindServerFault, api.KindInvalidRequest:
			return ExitServerError
		}
	}
	return ExitGeneralError
}

// UserFacing returns the text to show for err. Send failures show only
// their pre-approved message; diagnostics stay in the log.
func UserFacing(err error) string {
	var ce *api.ClassifiedError
	if errors.As(err, &ce) {
		return ce.UserMessage
	}
	return err.Error()
}
