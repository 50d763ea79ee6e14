// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prices fetches market chart data for the assets the advisor
// talks about.
package prices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"
)

// Configuration constants for the price chart API.
const (
	// DefaultTimeout is the default timeout for chart requests.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for
	// transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion from a
	// misbehaving endpoint.
	MaxResponseSize = 2 * 1024 * 1024 // 2MB
)

// Error variables for common chart API failures.
var (
	// ErrNoData indicates the endpoint returned an empty price series.
	ErrNoData = errors.New("no price data returned")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")
)

// APIError represents an error response from the chart endpoint.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("price API error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("price API error (HTTP %d)", e.Status)
}

// Point is one sampled price: when it was observed and its value in the
// quote currency.
type Point struct {
	Time  time.Time
	Value float64
}

// chartResponse is the wire shape of the chart endpoint: each entry is a
// [unix-milliseconds, price] pair.
type chartResponse struct {
	Prices [][2]float64 `json:"prices"`
}

// Client fetches market charts over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

// NewClient creates a chart client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		maxRetries: DefaultMaxRetries,
	}
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithMaxRetries sets the maximum number of retry attempts.
func (c *Client) WithMaxRetries(n int) *Client {
	c.maxRetries = n
	return c
}

// Chart fetches the price series for asset over the trailing number of
// days. The returned points are sorted by time ascending.
//
// Transient failures (5xx, rate limiting) are retried with exponential
// backoff; other errors return immediately.
func (c *Client) Chart(ctx context.Context, asset string, days int) ([]Point, error) {
	if days <= 0 {
		days = 7
	}

	endpoint := c.baseURL + "/api/prices?" + url.Values{
		"asset": {asset},
		"days":  {strconv.Itoa(days)},
	}.Encode()

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoffDelay(attempt)):
			}
		}

		points, err := c.fetch(ctx, endpoint)
		if err != nil {
			if isRetryable(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return points, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// fetch performs a single chart request.
func (c *Client) fetch(ctx context.Context, endpoint string) ([]Point, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, &APIError{Status: resp.StatusCode, Message: string(body)}
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}
	if len(chart.Prices) == 0 {
		return nil, ErrNoData
	}

	points := make([]Point, 0, len(chart.Prices))
	for _, pair := range chart.Prices {
		points = append(points, Point{
			Time:  time.UnixMilli(int64(pair[0])),
			Value: pair[1],
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})

	return points, nil
}

// readResponse reads the response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// isRetryable determines if an error should trigger a retry.
func isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 && apiErr.Status < 600
	}
	return false
}

// backoffDelay returns the delay before the given retry attempt.
func backoffDelay(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
