// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve.go - Development server command for the askton CLI.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeranaias/askton-tui/internal/config"
	"github.com/jeranaias/askton-tui/internal/devserver"
	"github.com/jeranaias/askton-tui/internal/ui/styles"
)

// HandleServe runs the bundled development advisor server until interrupted.
func HandleServe(args Args, cfg *config.Config) error {
	parser := NewArgParser(args.Raw)

	addr := parser.Flag("addr")
	if addr == "" {
		addr = cfg.Server.DevAddr
	}

	opts := devserver.Options{Addr: addr}
	if tps := parser.IntFlag("tps", 0); tps != 0 {
		opts.TokensPerSecond = float64(tps)
	}

	server := devserver.New(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	if !args.Quiet {
		fmt.Println(styles.RenderInfo("dev advisor server listening on " + addr))
		fmt.Println(styles.RenderInfo("endpoints: POST /api/chat, GET /api/prices, GET /health"))
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}
