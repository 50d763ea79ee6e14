// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package advisor provides the HTTP client for the askton inference service.
//
// The advisor answers a single question per request. The response body is a
// chunked HTTP stream of newline-delimited JSON records, each carrying one of:
//
//   - an incremental token:  {"token": "Buy "}
//   - the final answer:      {"response": "Buy TON.", "done": true}
//   - a terminal error:      {"error": "model unavailable"}
//
// The package splits the byte stream back into complete records regardless of
// how the transport fragments it (LineBuffer), classifies each record into a
// StreamEvent (DecodeEvent), and drives a per-request callback loop
// (StreamReader). Records that fail to decode are skipped, never fatal.
//
// # Usage
//
//	client := advisor.NewClient()
//	err := client.AskStream(ctx, "Advise me a token to buy", func(ev advisor.StreamEvent) {
//	    switch ev.Kind {
//	    case advisor.EventToken:
//	        fmt.Print(ev.Text)
//	    case advisor.EventFinal:
//	        fmt.Println(ev.Text)
//	    case advisor.EventError:
//	        fmt.Println("error:", ev.Message)
//	    }
//	})
package advisor
