// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for askton.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.askton/config.toml
//   - ~/.askton/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/askton-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete askton configuration.
type Config struct {
	// Version of the config schema
	Version string `toml:"version" json:"version"`

	// Server configuration for the advisor service
	Server ServerConfig `toml:"server" json:"server"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Log configuration
	Log LogConfig `toml:"log" json:"log"`
}

// ServerConfig contains advisor service connection settings.
type ServerConfig struct {
	// BaseURL is the advisor service endpoint
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs is the timeout for non-streaming requests
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// DevAddr is the listen address for the built-in dev server
	DevAddr string `toml:"dev_addr" json:"dev_addr"`
}

// Timeout returns the request timeout as a duration.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// Markdown renders completed answers through the markdown renderer
	Markdown bool `toml:"markdown" json:"markdown"`
	// FollowBelow is the distance from the bottom (in lines) under which
	// auto-follow re-arms
	FollowBelow int `toml:"follow_below" json:"follow_below"`
	// ReleaseAbove is the distance from the bottom (in lines) over which
	// auto-follow releases
	ReleaseAbove int `toml:"release_above" json:"release_above"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// StorageConfig contains transcript persistence configuration.
type StorageConfig struct {
	// Enabled controls whether transcripts are saved
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the SQLite database location (empty = ~/.askton/history.db)
	Path string `toml:"path" json:"path"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is the minimum level to log: "debug", "info", "warn", "error"
	Level string `toml:"level" json:"level"`
	// Path is the log file location (empty = ~/.askton/askton.log)
	Path string `toml:"path" json:"path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			BaseURL:     "http://127.0.0.1:8990",
			TimeoutSecs: 30,
			DevAddr:     "127.0.0.1:8990",
		},

		UI: UIConfig{
			Theme:        "dark",
			Markdown:     true,
			FollowBelow:  50,
			ReleaseAbove: 100,
			CompactMode:  false,
		},

		Storage: StorageConfig{
			Enabled: true,
			Path:    "", // resolved to ~/.askton/history.db at open
		},

		Log: LogConfig{
			Level: "info",
			Path:  "",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the askton configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".askton"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finalize(cfg)
			}
		}
	}

	// Try JSON as fallback
	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finalize(cfg)
			}
		}
	}

	cfg, err := finalize(cfg)
	if err != nil {
		return nil, err
	}
	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// finalize applies env overrides, defaults, and validation.
func finalize(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finalize(cfg)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies ASKTON_* environment variables over the
// loaded configuration. Environment always wins over file values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ASKTON_SERVER_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("ASKTON_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Server.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("ASKTON_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("ASKTON_MARKDOWN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.UI.Markdown = b
		}
	}
	if v := os.Getenv("ASKTON_HISTORY_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("ASKTON_HISTORY_DISABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Storage.Enabled = !b
		}
	}
	if v := os.Getenv("ASKTON_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# askton configuration file")
	fmt.Fprintln(file, "# Generated by askton - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func SaveJSON(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
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

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Server URL must parse and carry a scheme
	if c.Server.BaseURL != "" {
		u, err := url.Parse(c.Server.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "server.base_url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Server.BaseURL),
			})
		}
	}

	if c.Server.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.timeout_secs",
			Message: "must be non-negative",
		})
	}

	// UI theme
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	// Follow thresholds: the release threshold must sit above the follow
	// threshold or the hysteresis band collapses
	if c.UI.FollowBelow < 0 {
		errs = append(errs, ValidationError{
			Field:   "ui.follow_below",
			Message: "must be non-negative",
		})
	}
	if c.UI.ReleaseAbove <= c.UI.FollowBelow {
		errs = append(errs, ValidationError{
			Field:   "ui.release_above",
			Message: fmt.Sprintf("must be greater than follow_below (%d), got %d", c.UI.FollowBelow, c.UI.ReleaseAbove),
		})
	}

	// Log level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value
// configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaults.Server.BaseURL
	}
	if c.Server.TimeoutSecs == 0 {
		c.Server.TimeoutSecs = defaults.Server.TimeoutSecs
	}
	if c.Server.DevAddr == "" {
		c.Server.DevAddr = defaults.Server.DevAddr
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.FollowBelow == 0 {
		c.UI.FollowBelow = defaults.UI.FollowBelow
	}
	if c.UI.ReleaseAbove == 0 {
		c.UI.ReleaseAbove = defaults.UI.ReleaseAbove
	}

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}
