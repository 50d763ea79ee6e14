// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads, validates, and persists askton configuration.
//
// Configuration resolves in precedence order: built-in defaults, then
// ~/.askton/config.toml (or config.json), then ASKTON_* environment
// variables. Validation runs after every load so a bad file or env value
// fails fast with a field-level message.
//
// Watcher provides live reload: it watches the config file with
// fsnotify, debounces editor write bursts, and delivers each valid
// reloaded config to a callback.
package config
