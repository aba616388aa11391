// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/tauros-ai/tauros-tui/internal/config"
	"github.com/tauros-ai/tauros-tui/internal/ui/settings"
)

func settingsConfig(cfg *config.Config) settings.ConfigMsg {
	return settings.ConfigMsg{Config: cfg}
}
