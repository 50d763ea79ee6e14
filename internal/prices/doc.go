// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prices fetches market chart data and renders it as terminal
// sparklines.
//
// The chart endpoint returns [timestamp, price] pairs; Client.Chart
// normalizes them into sorted Points, retrying transient failures with
// exponential backoff. Sparkline and Summarize turn a series into the
// one-line chart and stat line shown by the price command.
package prices
