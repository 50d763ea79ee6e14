// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversation transcripts in a local SQLite
// database under ~/.askton/.
//
// Only settled turns are written: the store never sees streaming
// intermediate state. Sessions and their turns are read back for the
// history command and for export.
package storage
