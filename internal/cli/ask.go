// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question handler for the askton CLI.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/askton-tui/internal/advisor"
	"github.com/jeranaias/askton-tui/internal/config"
	"github.com/jeranaias/askton-tui/internal/ui/styles"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the global glamour renderer for markdown output.
// USABILITY: Renders markdown answers with formatting when stdout is a TTY.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// STYLES
// =============================================================================

var (
	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan)
)

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAsk handles the "ask" command: one question, streamed to stdout.
func HandleAsk(args Args, cfg *config.Config) error {
	question := args.Query

	// If no question from args, try reading from stdin (for piped input)
	if question == "" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			reader := bufio.NewReader(os.Stdin)
			data, err := io.ReadAll(reader)
			if err == nil && len(data) > 0 {
				question = strings.TrimSpace(string(data))
			}
		}
	}

	if question == "" {
		return fmt.Errorf("no question provided. Usage: askton ask \"your question\"")
	}

	client := newAdvisorClient(args, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err := streamAnswer(ctx, client, question, args, cfg)
	return err
}

// streamAnswer streams one answer to stdout, token by token, and returns
// the settled answer text. When the stream carries only a final answer
// (no tokens), the answer is rendered as markdown on TTYs; streamed
// tokens print raw to avoid re-printing the full text. Failures are
// returned, never printed; each caller renders them for its surface.
func streamAnswer(ctx context.Context, client *advisor.Client, question string, args Args, cfg *config.Config) (string, error) {
	var accumulated strings.Builder
	var finalText string
	var serviceErr string

	err := client.AskStream(ctx, question, func(event advisor.StreamEvent) {
		switch event.Kind {
		case advisor.EventToken:
			accumulated.WriteString(event.Text)
			fmt.Print(event.Text)
		case advisor.EventFinal:
			finalText = event.Text
		case advisor.EventError:
			serviceErr = event.Message
		}
	})

	if accumulated.Len() > 0 {
		fmt.Println()
	}

	if err != nil {
		return "", fmt.Errorf("advisor request failed: %w", err)
	}
	if serviceErr != "" {
		return "", fmt.Errorf("advisor error: %s", serviceErr)
	}

	// Final-only response: nothing streamed yet, print the whole answer.
	if accumulated.Len() == 0 && finalText != "" {
		if IsStdoutTTY() && cfg.UI.Markdown && !args.NoMarkdown {
			fmt.Print(renderMarkdown(finalText))
		} else {
			fmt.Println(finalText)
		}
	}

	// The final answer supersedes the accumulated tokens.
	answer := finalText
	if answer == "" {
		answer = accumulated.String()
	}
	if answer == "" {
		return "", fmt.Errorf("no response received")
	}

	return answer, nil
}

// newAdvisorClient builds an advisor client from config and flag overrides.
func newAdvisorClient(args Args, cfg *config.Config) *advisor.Client {
	clientCfg := advisor.DefaultConfig()
	clientCfg.BaseURL = cfg.Server.BaseURL
	if args.ServerURL != "" {
		clientCfg.BaseURL = args.ServerURL
	}
	if cfg.Server.TimeoutSecs > 0 {
		clientCfg.Timeout = cfg.Server.Timeout()
	}
	return advisor.NewClientWithConfig(clientCfg)
}
