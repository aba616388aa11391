// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tauros-ai/tauros-tui/internal/config"
	"github.com/tauros-ai/tauros-tui/internal/logging"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Env is what every command runs with once flags and config are resolved.
type Env struct {
	Config     *config.Config
	ConfigPath string
	Logger     *zap.Logger
}

// globalFlags are the persistent flags shared by all commands.
type globalFlags struct {
	configPath string
	baseURL    string
	userID     string
	verbose    bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}
	env := &Env{}

	root := &cobra.Command{
		Use:   "tauros",
		Short: "tauros - terminal client for the Tauros assistant",
		Long: `tauros talks to a Tauros assistant backend over HTTP.

Run without arguments to start the terminal UI. Messages are sent to
<base-url>/chat; configure the backend with "tauros config set".`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.resolve(flags)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if env.Logger != nil {
				_ = env.Logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), env)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default: ~/.tauros/config.toml)")
	pf.StringVar(&flags.baseURL, "base-url", "", "backend base URL (overrides config)")
	pf.StringVar(&flags.userID, "user-id", "", "value of the x-user-id header (overrides config)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newAskCmd(env),
		newChatCmd(env),
		newHealthCmd(env),
		newConfigCmd(env),
	)
	return root
}

// resolve loads the config, applies flag overrides and builds the logger.
func (e *Env) resolve(flags *globalFlags) error {
	path := flags.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return NewCommandError("tauros", "locating config", err)
		}
		path = p
	}

	var cfg *config.Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg = config.Default()
		cfg.ApplyEnvOverrides()
	} else {
		cfg, err = config.LoadFromPath(path)
		if err != nil {
			return err
		}
	}

	if flags.baseURL != "" {
		cfg.API.BaseURL = flags.baseURL
	}
	if flags.userID != "" {
		cfg.API.UserID = flags.userID
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Path:    logPath,
		Verbose: flags.verbose,
	})
	if err != nil {
		return err
	}

	e.Config = cfg
	e.ConfigPath = path
	e.Logger = logger
	return nil
}

// Execute runs the command line and exits with a code matching the error.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", UserFacing(err))
		os.Exit(ExitCodeFor(err))
	}
}
