// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/tauros-ai/tauros-tui/internal/api"
)

// healthResult is the --json output of health.
type healthResult struct {
	BaseURL  string            `json:"base_url"`
	Healthy  bool              `json:"healthy"`
	Status   string            `json:"status,omitempty"`
	Services map[string]string `json:"services,omitempty"`
	Uptime   string            `json:"uptime,omitempty"`
	Error    *askError         `json:"error,omitempty"`
}

func newHealthCmd(env *Env) *cobra.Command {
	var (
		jsonOut bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(env.Config.ClientConfig(), env.Logger)
			defer client.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			health, err := client.Health(ctx)
			result := toHealthResult(env.Config.API.BaseURL, health, err)
			out := cmd.OutOrStdout()

			if jsonOut {
				if jerr := writeJSON(out, result); jerr != nil {
					return jerr
				}
				return err
			}
			if err != nil {
				return err
			}

			mark := errorStyle.Render("unhealthy")
			if result.Healthy {
				mark = promptStyle.Render("healthy")
			}
			fmt.Fprintf(out, "%s  %s (status %q)\n", mark, result.BaseURL, result.Status)
			if result.Uptime != "" {
				fmt.Fprintf(out, "  uptime: %s\n", result.Uptime)
			}
			names := make([]string, 0, len(result.Services))
			for name := range result.Services {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "  %-12s %s\n", name, result.Services[name])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the result as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "give up after this long")
	return cmd
}

func toHealthResult(baseURL string, h *api.Health, err error) healthResult {
	out := healthResult{BaseURL: baseURL}
	if err != nil {
		ce := api.AsClassified(err)
		out.Error = &askError{
			Kind:      ce.Kind.String(),
			Message:   ce.UserMessage,
			Retryable: ce.Retryable,
			Status:    ce.Status,
		}
		return out
	}
	out.Healthy = h.Healthy()
	out.Status = h.Status
	out.Services = h.Services
	out.Uptime = h.Uptime
	return out
}
