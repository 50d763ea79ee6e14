// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jeranaias/askton-tui/internal/advisor"
	"github.com/jeranaias/askton-tui/internal/prices"
)

// newTestServer mounts the dev server handler on httptest with pacing
// disabled.
func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	if opts.TokensPerSecond == 0 {
		opts.TokensPerSecond = -1
	}
	opts.Logger = log.New(io.Discard, "", 0)

	server := httptest.NewServer(New(opts).Handler())
	t.Cleanup(server.Close)
	return server
}

func newTestClient(baseURL string) *advisor.Client {
	config := advisor.DefaultConfig()
	config.BaseURL = baseURL
	return advisor.NewClientWithConfig(config)
}

func TestChatStreamsTokensThenFinal(t *testing.T) {
	server := newTestServer(t, Options{})
	client := newTestClient(server.URL)

	var events []advisor.StreamEvent
	err := client.AskStream(context.Background(), "what about staking?", func(ev advisor.StreamEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("AskStream() error = %v", err)
	}
	if len(events) < 2 {
		t.Fatalf("len(events) = %d, want at least one token plus final", len(events))
	}

	last := events[len(events)-1]
	if last.Kind != advisor.EventFinal {
		t.Fatalf("last event kind = %v, want %v", last.Kind, advisor.EventFinal)
	}

	var joined strings.Builder
	for _, ev := range events[:len(events)-1] {
		if ev.Kind != advisor.EventToken {
			t.Errorf("event kind = %v, want %v", ev.Kind, advisor.EventToken)
		}
		joined.WriteString(ev.Text)
	}
	if joined.String() != last.Text {
		t.Errorf("concatenated tokens = %q, want final response %q", joined.String(), last.Text)
	}
}

func TestChatCannedAnswer(t *testing.T) {
	server := newTestServer(t, Options{
		Answer: func(question string) string { return "fixed answer" },
	})
	client := newTestClient(server.URL)

	var final string
	err := client.AskStream(context.Background(), "anything", func(ev advisor.StreamEvent) {
		if ev.Kind == advisor.EventFinal {
			final = ev.Text
		}
	})
	if err != nil {
		t.Fatalf("AskStream() error = %v", err)
	}
	if final != "fixed answer" {
		t.Errorf("final = %q, want %q", final, "fixed answer")
	}
}

func TestChatFailWithStreamsError(t *testing.T) {
	server := newTestServer(t, Options{FailWith: "model unavailable"})
	client := newTestClient(server.URL)

	var events []advisor.StreamEvent
	err := client.AskStream(context.Background(), "anything", func(ev advisor.StreamEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("AskStream() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Kind != advisor.EventError {
		t.Errorf("event kind = %v, want %v", events[0].Kind, advisor.EventError)
	}
	if events[0].Message != "model unavailable" {
		t.Errorf("message = %q, want %q", events[0].Message, "model unavailable")
	}
}

func TestChatRejectsBadRequests(t *testing.T) {
	server := newTestServer(t, Options{})

	resp, err := http.Post(server.URL+"/api/chat", "application/json", strings.NewReader(`{"question":""}`))
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty question status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	resp, err = http.Get(server.URL + "/api/chat")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, Options{})
	client := newTestClient(server.URL)

	if err := client.CheckRunning(context.Background()); err != nil {
		t.Errorf("CheckRunning() error = %v, want nil", err)
	}
}

func TestPricesEndpoint(t *testing.T) {
	server := newTestServer(t, Options{})

	points, err := prices.NewClient(server.URL).Chart(context.Background(), "ton", 2)
	if err != nil {
		t.Fatalf("Chart() error = %v", err)
	}
	if len(points) != 2*24 {
		t.Errorf("len(points) = %d, want %d hourly samples", len(points), 2*24)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Time.Before(points[i-1].Time) {
			t.Fatalf("points out of order at %d", i)
		}
	}
	for i, p := range points {
		if p.Value <= 0 {
			t.Errorf("points[%d].Value = %v, want > 0", i, p.Value)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		answer string
		want   int
	}{
		{"one two three", 3},
		{"single", 1},
		{"", 0},
	}
	for _, tt := range tests {
		tokens := tokenize(tt.answer)
		if len(tokens) != tt.want {
			t.Errorf("tokenize(%q) len = %d, want %d", tt.answer, len(tokens), tt.want)
			continue
		}
		if strings.Join(tokens, "") != tt.answer {
			t.Errorf("tokenize(%q) does not reassemble", tt.answer)
		}
	}
}
