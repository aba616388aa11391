// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/tauros-ai/tauros-tui/internal/conversation"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// jsonDocument is the exported JSON shape. The transient current response
// is not part of the conversation and is left out.
type jsonDocument struct {
	Exported  time.Time               `json:"exported"`
	Count     int                     `json:"count"`
	Exchanges []conversation.Exchange `json:"exchanges"`
}

// JSONExporter exports conversations to JSON format. Options other than
// the clock are ignored; JSON always carries every field.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a conversation to JSON format.
func (e *JSONExporter) Export(snap conversation.Snapshot) ([]byte, error) {
	if len(snap.Exchanges) == 0 {
		return nil, ErrNothingToExport
	}
	return json.MarshalIndent(jsonDocument{
		Exported:  e.options.now().UTC(),
		Count:     len(snap.Exchanges),
		Exchanges: snap.Exchanges,
	}, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
