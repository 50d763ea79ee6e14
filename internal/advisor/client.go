// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package advisor provides the HTTP client for the askton inference service.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the advisor client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeInvalidResponse
	ErrTypeCanceled
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning = &ClientError{Type: ErrTypeNotRunning, Message: "advisor service is not reachable"}
	ErrTimeout    = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrCanceled   = &ClientError{Type: ErrTypeCanceled, Message: "request canceled"}
)

// IsNotRunning checks if an error indicates the advisor is unreachable.
func IsNotRunning(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotRunning
	}
	return errors.Is(err, ErrNotRunning)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error came from a canceled request.
func IsCanceled(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeCanceled
	}
	return errors.Is(err, ErrCanceled)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the advisor client.
type ClientConfig struct {
	// BaseURL is the advisor API base URL (default: http://127.0.0.1:8990)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6
	// resolution issues on Windows
	BaseURL string

	// Timeout for non-streaming requests (default: 30s)
	Timeout time.Duration

	// StreamTimeout for establishing streaming connections (default: 5s)
	StreamTimeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       "http://127.0.0.1:8990",
		Timeout:       30 * time.Second,
		StreamTimeout: 5 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// askRequest is the wire form of a question submission. The question text is
// the entire payload.
type askRequest struct {
	Question string `json:"question"`
}

// serviceError is the advisor's JSON error body on non-success status codes.
type serviceError struct {
	Error string `json:"error"`
}

// Client handles communication with the advisor API.
// It is safe for concurrent use; several questions may stream at once.
//
// Example:
//
//	client := advisor.NewClient()
//	if err := client.CheckRunning(ctx); err != nil {
//	    log.Fatal("advisor not available:", err)
//	}
//	err := client.AskStream(ctx, question, handleEvent)
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new advisor client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new advisor client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8990"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.StreamTimeout == 0 {
		config.StreamTimeout = 5 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the advisor service is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from advisor: " + resp.Status,
		}
	}

	return nil
}

// =============================================================================
// STREAMING ASK
// =============================================================================

// AskStream submits a question and calls the callback for each decoded event,
// synchronously and in arrival order. Returns when a terminal event has been
// delivered, the stream ends, or the transport fails. A nil error with no
// terminal event delivered means the stream ended normally mid-answer; the
// caller decides what the accumulated text amounts to.
func (c *Client) AskStream(ctx context.Context, question string, callback EventCallback) error {
	body, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	// Use a client without timeout for streaming; the context governs the
	// lifetime of the connection instead. Silence on an open connection is a
	// transport concern, not handled here.
	streamClient := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return ErrCanceled
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Try to read a structured error message from the body
		var svcErr serviceError
		if err := json.NewDecoder(resp.Body).Decode(&svcErr); err == nil && svcErr.Error != "" {
			return &ClientError{
				Type:    ErrTypeInvalidResponse,
				Message: svcErr.Error,
			}
		}
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "ask request failed: " + resp.Status,
		}
	}

	reader := NewStreamReader(resp.Body)
	if err := reader.Process(ctx, callback); err != nil {
		// Cancellation mid-body arrives either from the pre-read context
		// check or as a wrapped read error after the body closes.
		if errors.Is(err, context.Canceled) {
			return ErrCanceled
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeConnection, Message: "stream interrupted", Cause: err}
	}
	return nil
}

// AskStreamChan submits a question and returns a channel of events.
// The channel is closed when the stream is complete or an error occurs.
// Transport errors are delivered as a final error event on the channel.
func (c *Client) AskStreamChan(ctx context.Context, question string) <-chan StreamEvent {
	ch := make(chan StreamEvent)

	go func() {
		defer close(ch)

		err := c.AskStream(ctx, question, func(event StreamEvent) {
			select {
			case ch <- event:
			case <-ctx.Done():
			}
		})

		if err != nil {
			select {
			case ch <- StreamEvent{Kind: EventError, Message: err.Error()}:
			case <-ctx.Done():
			}
		}
	}()

	return ch
}

// =============================================================================
// UTILITY METHODS
// =============================================================================

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// BaseURL returns the configured advisor base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}
