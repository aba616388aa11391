// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tauros-ai/tauros-tui/internal/api"
	"github.com/tauros-ai/tauros-tui/internal/sender"
	"github.com/tauros-ai/tauros-tui/internal/ui/styles"
)

// askResult is the --json output of ask.
type askResult struct {
	Message          string    `json:"message"`
	Reply            string    `json:"reply,omitempty"`
	Degraded         bool      `json:"degraded,omitempty"`
	Timestamp        string    `json:"timestamp,omitempty"`
	LatencyMS        int64     `json:"latency_ms,omitempty"`
	Model            string    `json:"model,omitempty"`
	Cached           bool      `json:"cached,omitempty"`
	ProcessingTimeMS int64     `json:"processing_time_ms,omitempty"`
	Error            *askError `json:"error,omitempty"`
}

type askError struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Status    int    `json:"status,omitempty"`
}

func newAskCmd(env *Env) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message and print the reply",
		Example: `  tauros ask "hola, ¿qué tal?"
  tauros ask --json "summarize my day"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(env.Config.ClientConfig(), env.Logger)
			defer client.Close()

			ctrl := sender.New(client, nil,
				sender.WithMaxLength(env.Config.API.MaxMessageLength),
				sender.WithLogger(env.Logger))

			res, err := sendOnce(ctrl, strings.Join(args, " "))
			out := cmd.OutOrStdout()

			if jsonOut {
				if jerr := writeJSON(out, toAskResult(res, err, ctrl.MaxLength())); jerr != nil {
					return jerr
				}
				return err
			}
			if err != nil {
				return err
			}
			return printReply(out, env, res.Reply)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the result as JSON")
	return cmd
}

// sendOnce drives a single send through the controller and waits for it.
// Validation errors come back before any call is made.
func sendOnce(ctrl *sender.Controller, message string) (sender.ResultMsg, error) {
	send, err := ctrl.Submit(message)
	if err != nil {
		return sender.ResultMsg{Message: message}, err
	}
	res, _ := send().(sender.ResultMsg)
	ctrl.Resolve(res)
	if res.Err != nil {
		return res, res.Err
	}
	return res, nil
}

func toAskResult(res sender.ResultMsg, err error, maxLength int) askResult {
	out := askResult{Message: res.Message}
	if err != nil && res.Err == nil {
		out.Error = &askError{
			Kind:    "validation",
			Message: sender.NoticeFor(err, maxLength).Text,
		}
		return out
	}
	if res.Err != nil {
		out.Error = &askError{
			Kind:      res.Err.Kind.String(),
			Message:   res.Err.UserMessage,
			Retryable: res.Err.Retryable,
			Status:    res.Err.Status,
		}
		return out
	}
	if res.Reply != nil {
		out.Reply = res.Reply.Text
		out.Degraded = res.Reply.Degraded
		out.LatencyMS = res.Reply.Latency.Milliseconds()
		out.Model = res.Reply.Model
		out.Cached = res.Reply.Cached
		out.ProcessingTimeMS = res.Reply.ProcessingTime.Milliseconds()
		if !res.Reply.Timestamp.IsZero() {
			out.Timestamp = res.Reply.Timestamp.Format(time.RFC3339)
		}
	}
	return out
}

// printReply renders markdown when writing to a terminal and prints the
// raw text otherwise, so piped output stays clean.
func printReply(w io.Writer, env *Env, reply *api.Reply) error {
	text := reply.Text
	if isTerminal(w) && env.Config.UI.Markdown && !reply.Degraded {
		r, err := styles.NewMarkdownRenderer(env.Config.UI.Theme, env.Config.UI.WordWrap)
		if err == nil {
			text = styles.RenderOr(r, text)
		}
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
