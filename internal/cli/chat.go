// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive line-mode chat for the askton CLI.
//
// This is the non-TUI chat surface: a liner-backed REPL that streams
// answers to stdout. Useful over SSH or in terminals where the full
// TUI is unwanted.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/askton-tui/internal/advisor"
	"github.com/jeranaias/askton-tui/internal/config"
	"github.com/jeranaias/askton-tui/internal/storage"
	"github.com/jeranaias/askton-tui/internal/turn"
	"github.com/jeranaias/askton-tui/internal/ui/styles"

	"github.com/google/uuid"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Blue).
			Bold(true)

	chatBannerStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	chatHintStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		// Fallback to temp directory if config dir unavailable
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
// Supports history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history to file with secure permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat runs the interactive line-mode chat loop.
func HandleChat(args Args, cfg *config.Config) error {
	if !IsTTY() {
		return fmt.Errorf("chat requires an interactive terminal; use 'askton ask' for piped input")
	}

	client := newAdvisorClient(args, cfg)

	// History persistence is best-effort: chat works without it.
	var store *storage.Store
	if cfg.Storage.Enabled {
		s, err := storage.Open(cfg.Storage.Path)
		if err == nil {
			store = s
			defer store.Close()
		} else if !args.Quiet {
			fmt.Fprintln(os.Stderr, chatHintStyle.Render("history disabled: "+err.Error()))
		}
	}
	sessionID := uuid.NewString()

	input := NewChatCLI()
	defer input.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !args.Quiet {
		printChatBanner(ctx, client, cfg)
	}

	for {
		question, err := input.ReadInput(promptStyle.Render("you> "))
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Println()
				return nil
			}
			// io.EOF on ctrl+d
			fmt.Println()
			return nil
		}

		question = strings.TrimSpace(question)
		switch question {
		case "":
			continue
		case "/quit", "/exit", "/q":
			return nil
		case "/help", "/?":
			printChatHelp()
			continue
		}

		runChatExchange(ctx, os.Stderr, client, store, sessionID, question, args, cfg)
		if ctx.Err() != nil {
			return nil
		}
	}
}

// runChatExchange streams one answer, reports any failure in place of the
// answer, and records the turn. A failed exchange must never hand the
// prompt back in silence; transport failures and empty streams are
// rendered on errOut the same way service errors are.
func runChatExchange(ctx context.Context, errOut io.Writer, client *advisor.Client, store *storage.Store, sessionID, question string, args Args, cfg *config.Config) {
	answer, err := streamAnswer(ctx, client, question, args, cfg)
	if err != nil && ctx.Err() == nil {
		fmt.Fprintln(errOut, errorStyle.Render(styles.StatusIndicators.Error+" "+err.Error()))
	}
	recordChatTurn(store, sessionID, question, answer, err)
}

// recordChatTurn persists one REPL exchange when history is enabled.
func recordChatTurn(store *storage.Store, sessionID, question, answer string, askErr error) {
	if store == nil {
		return
	}

	snap := turn.Snapshot{
		ID:          uuid.NewString(),
		Question:    question,
		DisplayText: answer,
		Status:      turn.StatusComplete,
		CreatedAt:   time.Now().UTC(),
	}
	if askErr != nil {
		snap.Status = turn.StatusFailed
		snap.ErrorMessage = askErr.Error()
	}
	// Best-effort: a failed write never interrupts the conversation.
	_ = store.RecordTurn(sessionID, snap)
}

// printChatBanner prints the session header with advisor reachability.
func printChatBanner(ctx context.Context, client *advisor.Client, cfg *config.Config) {
	fmt.Println(chatBannerStyle.Render("askton chat"))

	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.CheckRunning(probeCtx); err != nil {
		fmt.Println(styles.RenderWarning("advisor service not reachable at " + cfg.Server.BaseURL))
	} else {
		fmt.Println(styles.RenderSuccess("connected to " + cfg.Server.BaseURL))
	}
	fmt.Println(chatHintStyle.Render("Type /help for commands, /quit to exit."))
	fmt.Println()
}

// printChatHelp prints the in-chat command reference.
func printChatHelp() {
	fmt.Println(chatHintStyle.Render(`Commands:
  /help, /?     Show this help
  /quit, /exit  Leave chat
Arrow keys navigate input history; Ctrl+C aborts the prompt.`))
}
