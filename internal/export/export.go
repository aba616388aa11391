// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tauros-ai/tauros-tui/internal/conversation"
	"github.com/tauros-ai/tauros-tui/internal/util"
)

// ErrNothingToExport is returned for a conversation with no exchanges.
var ErrNothingToExport = errors.New("conversation has no exchanges")

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a conversation snapshot to one file format.
type Exporter interface {
	// Export returns the file content.
	Export(snap conversation.Snapshot) ([]byte, error)

	// FileExtension returns the extension including the dot.
	FileExtension() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written. Default: current directory
	OutputDir string

	// IncludeMetadata adds a header with counts and dates.
	IncludeMetadata bool

	// IncludeTimestamps adds the time to each exchange.
	IncludeTimestamps bool

	// Now stamps the file name and header. Default: time.Now
	Now func() time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		Now:               time.Now,
	}
}

func (o *Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ForFormat returns the exporter for "md" or "json".
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "", "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want md or json)", format)
	}
}

// WriteFile exports snap into opts.OutputDir and returns the file path.
// Files are written atomically and readable only by the owner.
func WriteFile(snap conversation.Snapshot, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(snap)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	filename := fmt.Sprintf("tauros_%s%s", opts.now().Format("20060102_150405"), exporter.FileExtension())
	outputPath := filepath.Join(dir, filename)

	if err := util.AtomicWriteFile(outputPath, content, 0600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}
