// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for tauros.
//
// Configuration is TOML, with built-in defaults, environment variable
// overrides and validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - APIConfig: assistant endpoint, identifying header and timeout
//   - UIConfig: theme and rendering options
//   - LoggingConfig: log level and file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (TAUROS_*)
//   - ~/.tauros/config.toml (or $TAUROS_HOME/config.toml)
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := api.NewClient(cfg.ClientConfig(), logger)
//
// Watch re-loads the file whenever it changes on disk, which is how the
// settings screen's edits reach a running session.
package config
