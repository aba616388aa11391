// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the tauros command line.
//
// Commands:
//
//	tauros                      Start the terminal UI
//	tauros ask <message>        Send one message and print the reply
//	tauros chat                 Line-based chat (history with arrow keys)
//	tauros health               Query the backend /health endpoint
//	tauros config show|path|keys|get|set
//
// Global flags:
//
//	--config FILE     Use FILE instead of ~/.tauros/config.toml
//	--base-url URL    Override api.base_url for this run
//	--user-id ID      Override api.user_id for this run
//	-v, --verbose     Debug logging
//
// Every command loads the config file, then applies TAUROS_* environment
// overrides, then flags. Logs go to the configured log file.
package cli
