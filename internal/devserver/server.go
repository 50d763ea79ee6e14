// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devserver provides a local stand-in for the advisor inference
// service.
//
// Endpoints:
//   - POST /api/chat   - Streaming question answering
//   - GET  /api/prices - Synthetic market chart data
//   - GET  /health     - Health check
//
// Responses stream as newline-delimited JSON records, one token per
// record, paced to feel like real inference.
package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the default listen address, matching the advisor
	// client's default base URL.
	DefaultAddr = "127.0.0.1:8990"

	// DefaultTokensPerSecond paces the token stream.
	DefaultTokensPerSecond = 40

	// MaxRequestBodySize is the maximum request body size (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// Version is the dev server version.
	Version = "0.1.0"
)

// ============================================================================
// TYPES
// ============================================================================

// askRequest is the inbound question body.
type askRequest struct {
	Question string `json:"question"`
}

// tokenRecord is one streamed token.
type tokenRecord struct {
	Token string `json:"token"`
}

// finalRecord closes a stream with the settled answer.
type finalRecord struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// errorRecord reports an in-stream failure.
type errorRecord struct {
	Error string `json:"error"`
}

// healthResponse is the health check body.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Options configures the dev server. Zero values select defaults.
type Options struct {
	// Addr is the listen address.
	Addr string

	// TokensPerSecond paces streamed tokens. Zero selects the default;
	// negative disables pacing (useful in tests).
	TokensPerSecond float64

	// Answer maps a question to its canned answer. Nil selects the
	// built-in responder.
	Answer func(question string) string

	// FailWith, when non-empty, makes every chat stream an error record
	// instead of an answer. Used to exercise failure paths.
	FailWith string

	// Logger receives request logs. Nil uses the standard logger.
	Logger *log.Logger
}

// Server is the advisor stand-in.
type Server struct {
	opts       Options
	httpServer *http.Server
	startTime  time.Time
}

// ============================================================================
// LIFECYCLE
// ============================================================================

// New creates a dev server with the given options.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.TokensPerSecond == 0 {
		opts.TokensPerSecond = DefaultTokensPerSecond
	}
	if opts.Answer == nil {
		opts.Answer = defaultAnswer
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	s := &Server{
		opts:      opts,
		startTime: time.Now(),
	}
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler with middleware applied. Exposed so
// tests can mount it on httptest.Server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/prices", s.handlePrices)
	mux.HandleFunc("/health", s.handleHealth)

	return Chain(
		RecoveryMiddleware(s.opts.Logger),
		LoggingMiddleware(s.opts.Logger),
	)(mux)
}

// ListenAndServe blocks serving requests until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	s.opts.Logger.Printf("dev advisor listening on %s", s.opts.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ============================================================================
// CHAT
// ============================================================================

// handleChat streams an answer as newline-delimited JSON records.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req askRequest
	body := http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSONError(w, http.StatusBadRequest, "question is required")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}

	if s.opts.FailWith != "" {
		enc.Encode(errorRecord{Error: s.opts.FailWith})
		flush()
		return
	}

	answer := s.opts.Answer(req.Question)

	var limiter *rate.Limiter
	if s.opts.TokensPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.opts.TokensPerSecond), 1)
	}

	for _, token := range tokenize(answer) {
		if limiter != nil {
			if err := limiter.Wait(r.Context()); err != nil {
				return // client went away
			}
		}
		if enc.Encode(tokenRecord{Token: token}) != nil {
			return
		}
		flush()
	}

	enc.Encode(finalRecord{Response: answer, Done: true})
	flush()
}

// tokenize splits an answer into word tokens, keeping the separating
// space on each token so concatenation reproduces the answer exactly.
func tokenize(answer string) []string {
	words := strings.Split(answer, " ")
	tokens := make([]string, 0, len(words))
	for i, word := range words {
		if i < len(words)-1 {
			word += " "
		}
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// defaultAnswer is the built-in responder. It keys off a few question
// shapes to make interactive testing less monotonous.
func defaultAnswer(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "price"):
		return "TON trades around $5.20 today. Check the price command for the weekly chart."
	case strings.Contains(q, "staking"):
		return "Staking TON through a validator currently yields roughly 4% annually. Rewards compound each validation round."
	case strings.Contains(q, "wallet"):
		return "Use a self-custodial wallet and back up the recovery phrase offline. Never share it with anyone."
	default:
		return "That depends on your risk tolerance. This is a development stub, not financial advice."
	}
}

// ============================================================================
// PRICES
// ============================================================================

// handlePrices serves a synthetic price series shaped like
// {"prices":[[unix_ms,value],...]}.
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	asset := r.URL.Query().Get("asset")
	if asset == "" {
		asset = "ton"
	}
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days <= 0 {
		days = 7
	}
	if days > 365 {
		days = 365
	}

	series := syntheticSeries(asset, days)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][][2]float64{"prices": series})
}

// syntheticSeries generates a deterministic sine-wave walk, hourly
// samples, seeded by the asset name so different assets look different.
func syntheticSeries(asset string, days int) [][2]float64 {
	var seed float64
	for _, r := range asset {
		seed += float64(r)
	}
	base := 4.0 + math.Mod(seed, 3.0)

	hours := days * 24
	now := time.Now().Truncate(time.Hour)
	start := now.Add(-time.Duration(hours) * time.Hour)

	series := make([][2]float64, 0, hours)
	for i := 0; i < hours; i++ {
		t := start.Add(time.Duration(i) * time.Hour)
		value := base +
			0.4*math.Sin(float64(i)/24*2*math.Pi+seed) +
			0.1*math.Sin(float64(i)/6*2*math.Pi)
		series = append(series, [2]float64{float64(t.UnixMilli()), round4(value)})
	}
	return series
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// ============================================================================
// HEALTH
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Version: Version,
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
	})
}

// writeJSONError writes {"error": message} with the given status.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, "{\"error\":%s}\n", strconv.Quote(message))
}
