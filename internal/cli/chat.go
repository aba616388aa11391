// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tauros-ai/tauros-tui/internal/api"
	"github.com/tauros-ai/tauros-tui/internal/config"
	"github.com/tauros-ai/tauros-tui/internal/export"
	"github.com/tauros-ai/tauros-tui/internal/sender"
	"github.com/tauros-ai/tauros-tui/internal/ui/styles"
	"github.com/tauros-ai/tauros-tui/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Teal).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextDim)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Red)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Orange)
)

const chatHelp = `commands:
  /history   list this session's exchanges
  /export    save the conversation (/export json for JSON)
  /help      show this help
  /quit      exit (or Ctrl+D)`

// =============================================================================
// INPUT HISTORY
// =============================================================================

// LineReader reads one line of input.
type LineReader interface {
	ReadInput(prompt string) (string, error)
	Close()
}

// ChatCLI provides line editing and input history for the chat REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI whose history lives next to the config.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}

	c := &ChatCLI{line: line, historyFile: filepath.Join(dir, "chat_history")}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from disk.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line, adding non-empty input to the history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// COMMAND
// =============================================================================

func newChatCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start a line-based chat session",
		Long: `Start a line-based chat session.

Each line is sent as one message. Arrow keys recall earlier input.
Type /help for commands, /quit or Ctrl+D to exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(env.Config.ClientConfig(), env.Logger)
			defer client.Close()

			ctrl := sender.New(client, nil,
				sender.WithMaxLength(env.Config.API.MaxMessageLength),
				sender.WithLogger(env.Logger))

			reader := NewChatCLI()
			defer reader.Close()

			session := &chatSession{
				ctrl:   ctrl,
				in:     reader,
				out:    cmd.OutOrStdout(),
				env:    env,
				logger: env.Logger,
			}
			return session.run()
		},
	}
}

// chatSession is one REPL run over a send controller.
type chatSession struct {
	ctrl   *sender.Controller
	in     LineReader
	out    io.Writer
	env    *Env
	logger *zap.Logger

	// exportDir overrides the export directory (current directory).
	exportDir string
}

func (s *chatSession) run() error {
	fmt.Fprintln(s.out, infoStyle.Render(fmt.Sprintf("connected to %s as %s. /help for commands.",
		s.env.Config.API.BaseURL, s.env.Config.API.UserID)))

	for {
		input, err := s.in.ReadInput(promptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(s.out)
				return nil
			}
			return NewCommandError("chat", "reading input", err)
		}

		command, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
		switch command {
		case "/quit", "/q", "/exit":
			return nil
		case "/help", "/h":
			fmt.Fprintln(s.out, chatHelp)
			continue
		case "/history":
			s.printHistory()
			continue
		case "/export":
			s.export(strings.TrimSpace(arg))
			continue
		}

		s.send(input)
	}
}

// send submits one line. Failures are reported and the session goes on.
func (s *chatSession) send(input string) {
	res, err := sendOnce(s.ctrl, input)
	switch {
	case err == nil:
		if perr := printReply(s.out, s.env, res.Reply); perr != nil {
			s.logger.Warn("failed to print reply", zap.Error(perr))
		}
		if meta := res.Reply.Meta(); meta != "" {
			fmt.Fprintln(s.out, infoStyle.Render(meta))
		}
	case res.Err != nil:
		fmt.Fprintln(s.out, errorStyle.Render(res.Err.UserMessage))
	default:
		fmt.Fprintln(s.out, warningStyle.Render(sender.NoticeFor(err, s.ctrl.MaxLength()).Text))
	}
}

func (s *chatSession) printHistory() {
	snap := s.ctrl.Store().Snapshot()
	if len(snap.Exchanges) == 0 {
		fmt.Fprintln(s.out, infoStyle.Render("no exchanges yet."))
		return
	}
	for _, ex := range snap.Exchanges {
		fmt.Fprintf(s.out, "%s  %s\n    %s\n",
			infoStyle.Render(ex.Timestamp.Format("15:04:05")),
			util.Preview(ex.Message, 60),
			util.Preview(ex.Response, 70))
	}
}

func (s *chatSession) export(format string) {
	opts := export.DefaultOptions()
	if s.exportDir != "" {
		opts.OutputDir = s.exportDir
	}
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		fmt.Fprintln(s.out, warningStyle.Render(err.Error()))
		return
	}
	path, err := export.WriteFile(s.ctrl.Store().Snapshot(), exporter, opts)
	if err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			fmt.Fprintln(s.out, infoStyle.Render("nothing to export yet."))
			return
		}
		s.logger.Warn("export failed", zap.Error(err))
		fmt.Fprintln(s.out, errorStyle.Render("export failed."))
		return
	}
	s.logger.Info("conversation exported", zap.String("path", path))
	fmt.Fprintln(s.out, infoStyle.Render("saved "+path))
}
