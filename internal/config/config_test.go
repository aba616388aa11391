// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, 1000, cfg.API.MaxMessageLength)

	cc := cfg.ClientConfig()
	assert.Equal(t, cfg.API.BaseURL, cc.BaseURL)
	assert.Equal(t, cfg.API.UserID, cc.UserID)
	assert.Equal(t, 30*time.Second, cc.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad url", func(c *Config) { c.API.BaseURL = "not a url" }, "api.base_url"},
		{"ftp url", func(c *Config) { c.API.BaseURL = "ftp://host" }, "api.base_url"},
		{"blank user", func(c *Config) { c.API.UserID = "  " }, "api.user_id"},
		{"tiny timeout", func(c *Config) { c.API.TimeoutMS = 5 }, "api.timeout_ms"},
		{"zero length", func(c *Config) { c.API.MaxMessageLength = 0 }, "api.max_message_length"},
		{"theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"wrap", func(c *Config) { c.UI.WordWrap = -1 }, "ui.word_wrap"},
		{"level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var errs ValidateErrors
			require.True(t, errors.As(err, &errs))
			require.Len(t, errs, 1)
			assert.Equal(t, tc.field, errs[0].Field)
		})
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.API.BaseURL = "https://tauros.example.com"
	cfg.API.UserID = "mobile-7"
	cfg.UI.Theme = "dark"
	require.NoError(t, SaveTo(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFromPath_FillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nbase_url = \"http://10.0.0.2:8000\"\n"), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:8000", cfg.API.BaseURL)
	assert.Equal(t, "tauros-tui", cfg.API.UserID)
	assert.Equal(t, 30000, cfg.API.TimeoutMS)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\ntimeout_ms = 1\n"), 0600))
	_, err := LoadFromPath(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("not = [toml"), 0600))
	_, err = LoadFromPath(path)
	assert.Error(t, err)
}

func TestLoad_UsesTaurosHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TAUROS_HOME", home)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().API, cfg.API)

	cfg.API.UserID = "saved"
	require.NoError(t, Save(cfg))

	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "saved", cfg.API.UserID)

	logPath, err := cfg.LogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs", "tauros.log"), logPath)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TAUROS_BASE_URL", "http://override:9000")
	t.Setenv("TAUROS_USER_ID", "env-user")
	t.Setenv("TAUROS_TIMEOUT_MS", "5000")
	t.Setenv("TAUROS_LOG_LEVEL", "DEBUG")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "http://override:9000", cfg.API.BaseURL)
	assert.Equal(t, "env-user", cfg.API.UserID)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("api.user_id", "abc"))
	require.NoError(t, cfg.Set("api.timeout_ms", "1500"))
	require.NoError(t, cfg.Set("ui.markdown", "false"))

	v, err := cfg.Get("api.user_id")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
	assert.Equal(t, 1500, cfg.API.TimeoutMS)
	assert.False(t, cfg.UI.Markdown)

	assert.Error(t, cfg.Set("api.timeout_ms", "soon"))
	assert.Error(t, cfg.Set("api.nope", "1"))
	assert.Error(t, cfg.Set("nope.user_id", "1"))
	_, err = cfg.Get("api")
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "api.base_url")
	assert.Contains(t, keys, "ui.theme")
	assert.Contains(t, keys, "logging.level")

	cfg := Default()
	for _, k := range keys {
		_, err := cfg.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.API.UserID = "other"
	assert.Equal(t, "tauros-tui", cfg.API.UserID)
}

func TestWatch_ReloadsOnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTo(Default(), path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	err := Watch(ctx, path, 20*time.Millisecond, func(cfg *Config, err error) {
		if err == nil {
			reloaded <- cfg
		}
	})
	require.NoError(t, err)

	cfg := Default()
	cfg.API.UserID = "watched"
	require.NoError(t, SaveTo(cfg, path))

	select {
	case got := <-reloaded:
		assert.Equal(t, "watched", got.API.UserID)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestWatch_CreatesPrivateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tauros")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, Watch(ctx, filepath.Join(dir, "config.toml"), 0, func(*Config, error) {}))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestReadFile_IgnoresEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, SaveTo(cfg, path))
	t.Setenv("TAUROS_USER_ID", "from-env")

	cfg, err = ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tauros-tui", cfg.API.UserID)

	cfg, err = LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.API.UserID)
}
