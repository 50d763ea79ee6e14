// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devserver is a local advisor stand-in for development and
// testing. It speaks the same streaming wire protocol as the real
// inference service: newline-delimited JSON records carrying token,
// final-response, and error events, plus a synthetic price chart
// endpoint and a health check.
//
// Run it with `askton serve` and point the client at the same address.
package devserver
