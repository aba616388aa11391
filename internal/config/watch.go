// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce collapses the burst of events editors produce on save.
const DefaultWatchDebounce = 150 * time.Millisecond

// ReloadFunc receives the re-loaded config, or the error that prevented
// loading it. It runs on the watcher goroutine.
type ReloadFunc func(cfg *Config, err error)

// Watch re-loads path whenever it is written, created or renamed into place
// and calls fn with the result. The parent directory is watched so atomic
// saves (write temp file, rename) are seen. Watch returns once the watcher
// is installed; it stops when ctx is done.
func Watch(ctx context.Context, path string, debounce time.Duration, fn ReloadFunc) error {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go watchLoop(ctx, watcher, filepath.Clean(path), debounce, fn)
	return nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, debounce time.Duration, fn ReloadFunc) {
	defer watcher.Close()

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fn(nil, fmt.Errorf("config watcher: %w", err))

		case <-timer.C:
			if _, err := os.Stat(path); err != nil {
				// Renamed away; wait for the replacement to land.
				continue
			}
			fn(LoadFromPath(path))
		}
	}
}
