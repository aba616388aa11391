// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tauros-ai/tauros-tui/internal/api"
	"github.com/tauros-ai/tauros-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete tauros configuration.
type Config struct {
	Version string `toml:"version"`

	// Assistant endpoint
	API APIConfig `toml:"api"`

	// Terminal UI
	UI UIConfig `toml:"ui"`

	// Log output
	Logging LoggingConfig `toml:"logging"`
}

// APIConfig describes the assistant endpoint.
type APIConfig struct {
	// BaseURL is the backend base URL; messages go to BaseURL + "/chat"
	BaseURL string `toml:"base_url"`
	// UserID is sent in the x-user-id header
	UserID string `toml:"user_id"`
	// TimeoutMS bounds each call (default 30000)
	TimeoutMS int `toml:"timeout_ms"`
	// MaxMessageLength is the longest message accepted, in characters (default 1000)
	MaxMessageLength int `toml:"max_message_length"`
}

// UIConfig contains display options.
type UIConfig struct {
	// Theme is "dark", "light" or "auto"
	Theme string `toml:"theme"`
	// WordWrap is the column width for rendered replies (0 = window width)
	WordWrap int `toml:"word_wrap"`
	// Markdown enables markdown rendering of replies
	Markdown bool `toml:"markdown"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	// Level is debug, info, warn or error
	Level string `toml:"level"`
	// Path is the log file (empty = <config dir>/logs/tauros.log)
	Path string `toml:"path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1",
		API: APIConfig{
			BaseURL:          "http://127.0.0.1:8000",
			UserID:           "tauros-tui",
			TimeoutMS:        30000,
			MaxMessageLength: 1000,
		},
		UI: UIConfig{
			Theme:    "auto",
			WordWrap: 0,
			Markdown: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaults.API.BaseURL
	}
	if cfg.API.UserID == "" {
		cfg.API.UserID = defaults.API.UserID
	}
	if cfg.API.TimeoutMS == 0 {
		cfg.API.TimeoutMS = defaults.API.TimeoutMS
	}
	if cfg.API.MaxMessageLength == 0 {
		cfg.API.MaxMessageLength = defaults.API.MaxMessageLength
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the tauros configuration directory. TAUROS_HOME overrides
// the default ~/.tauros.
func Dir() (string, error) {
	if home := os.Getenv("TAUROS_HOME"); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".tauros"), nil
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the effective log file path.
func (c *Config) LogPath() (string, error) {
	if c.Logging.Path != "" {
		return c.Logging.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "tauros.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads the config file if it exists and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file and applies
// environment overrides.
func LoadFromPath(path string) (*Config, error) {
	cfg, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ReadFile loads the file at path without environment overrides, so that
// edits saved back do not capture them. A missing file yields defaults.
func ReadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	cfg, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func decodeFile(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	fillDefaults(cfg)
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default path.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration to path atomically with 0600 permissions.
func SaveTo(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# tauros configuration file\n")
	buf.WriteString("# Edits are picked up by running sessions.\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validThemes = map[string]bool{"auto": true, "dark": true, "light": true}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{"api.base_url", "must be an http or https URL"})
	}
	if strings.TrimSpace(c.API.UserID) == "" {
		errs = append(errs, ValidationError{"api.user_id", "must not be empty"})
	}
	if c.API.TimeoutMS < 100 || c.API.TimeoutMS > 600000 {
		errs = append(errs, ValidationError{"api.timeout_ms", "must be between 100 and 600000"})
	}
	if c.API.MaxMessageLength < 1 {
		errs = append(errs, ValidationError{"api.max_message_length", "must be positive"})
	}
	if !validThemes[c.UI.Theme] {
		errs = append(errs, ValidationError{"ui.theme", "must be auto, dark or light"})
	}
	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{"ui.word_wrap", "must not be negative"})
	}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, ValidationError{"logging.level", "must be debug, info, warn or error"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - TAUROS_BASE_URL: overrides api.base_url
//   - TAUROS_USER_ID: overrides api.user_id
//   - TAUROS_TIMEOUT_MS: overrides api.timeout_ms
//   - TAUROS_LOG_LEVEL: overrides logging.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("TAUROS_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("TAUROS_USER_ID"); v != "" {
		c.API.UserID = v
	}
	if v := os.Getenv("TAUROS_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutMS = ms
		}
	}
	if v := os.Getenv("TAUROS_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Timeout returns the call timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutMS) * time.Millisecond
}

// ClientConfig returns the api client configuration.
func (c *Config) ClientConfig() *api.ClientConfig {
	return &api.ClientConfig{
		BaseURL: c.API.BaseURL,
		UserID:  c.API.UserID,
		Timeout: c.Timeout(),
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Keys lists every settable key in dot notation.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		name := strings.Split(section.Tag.Get("toml"), ",")[0]
		if section.Type.Kind() != reflect.Struct {
			continue
		}
		for j := 0; j < section.Type.NumField(); j++ {
			field := strings.Split(section.Type.Field(j).Tag.Get("toml"), ",")[0]
			keys = append(keys, name+"."+field)
		}
	}
	return keys
}

// Get retrieves a value by dot notation key (e.g. "api.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value by dot notation key, converting from string as needed.
// The config is not validated; call Validate before saving.
func (c *Config) Set(key string, value string) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	return setFieldValue(field, value)
}

// lookup resolves "section.field" by TOML tag.
func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return reflect.Value{}, fmt.Errorf("invalid key %q (want section.field)", key)
	}

	v := reflect.ValueOf(c).Elem()
	section, ok := fieldByTag(v, parts[0])
	if !ok || section.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("unknown section: %s", parts[0])
	}
	field, ok := fieldByTag(section, parts[1])
	if !ok {
		return reflect.Value{}, fmt.Errorf("unknown field: %s", key)
	}
	return field, nil
}

func fieldByTag(v reflect.Value, tag string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if strings.Split(t.Field(i).Tag.Get("toml"), ",")[0] == tag {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue sets a reflect.Value from a string with type conversion.
func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value: %w", err)
		}
		field.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %w", err)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
