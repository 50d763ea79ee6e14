// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Conversation history commands for the askton CLI.
package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/askton-tui/internal/config"
	"github.com/jeranaias/askton-tui/internal/storage"
	"github.com/jeranaias/askton-tui/internal/turn"
	"github.com/jeranaias/askton-tui/internal/ui/styles"
	"github.com/jeranaias/askton-tui/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	historyIDStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan)

	historyMetaStyle = lipgloss.NewStyle().
				Foreground(styles.TextMuted)

	historyQuestionStyle = lipgloss.NewStyle().
				Foreground(styles.Blue).
				Bold(true)

	historyErrorStyle = lipgloss.NewStyle().
				Foreground(styles.Rose)
)

// =============================================================================
// HISTORY HANDLER
// =============================================================================

// HandleHistory dispatches the "history" subcommands.
func HandleHistory(args Args, cfg *config.Config) error {
	if !cfg.Storage.Enabled {
		return fmt.Errorf("history is disabled (storage.enabled = false)")
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("cannot open history database: %w", err)
	}
	defer store.Close()

	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "list":
		return historyList(store)
	case "show":
		return historyShow(store, parser)
	case "search":
		return historySearch(store, parser)
	case "delete":
		return historyDelete(store, parser)
	default:
		return fmt.Errorf("unknown history subcommand %q (expected list, show, search, delete)", parser.Subcommand())
	}
}

// historyList prints all saved sessions, newest first.
func historyList(store *storage.Store) error {
	sessions, err := store.Sessions()
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println(historyMetaStyle.Render("No saved conversations yet."))
		return nil
	}

	for _, s := range sessions {
		preview := util.TruncateRunes(s.Preview, 60)
		fmt.Printf("%s  %s  %s\n",
			historyIDStyle.Render(s.ID),
			historyMetaStyle.Render(fmt.Sprintf("%s, %d turns", s.StartedAt.Local().Format("2006-01-02 15:04"), s.TurnCount)),
			preview)
	}
	return nil
}

// historyShow prints one session transcript.
func historyShow(store *storage.Store, parser *ArgParser) error {
	pos := parser.Positional()
	if len(pos) == 0 {
		return fmt.Errorf("usage: askton history show <session-id>")
	}

	turns, err := store.Transcript(pos[0])
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no session %q", pos[0])
		}
		return err
	}

	for i, t := range turns {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(historyQuestionStyle.Render("you> ") + t.Question)
		if t.Status == turn.StatusFailed {
			msg := t.Error
			if msg == "" {
				msg = "request failed"
			}
			fmt.Println(historyErrorStyle.Render(styles.StatusIndicators.Error + " " + msg))
			continue
		}
		fmt.Println(t.Answer)
	}
	return nil
}

// historySearch prints sessions matching a query across questions and answers.
func historySearch(store *storage.Store, parser *ArgParser) error {
	pos := parser.Positional()
	if len(pos) == 0 {
		return fmt.Errorf("usage: askton history search <query>")
	}

	results, err := store.Search(pos[0])
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println(historyMetaStyle.Render("No matches."))
		return nil
	}

	for _, s := range results {
		fmt.Printf("%s  %s  %s\n",
			historyIDStyle.Render(s.ID),
			historyMetaStyle.Render(s.StartedAt.Local().Format("2006-01-02 15:04")),
			util.TruncateRunes(s.Preview, 60))
	}
	return nil
}

// historyDelete removes a session after explicit confirmation.
func historyDelete(store *storage.Store, parser *ArgParser) error {
	pos := parser.Positional()
	if len(pos) == 0 {
		return fmt.Errorf("usage: askton history delete <session-id> --confirm")
	}
	if !parser.BoolFlag("confirm") {
		return fmt.Errorf("deletion requires --confirm")
	}

	if err := store.DeleteSession(pos[0]); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no session %q", pos[0])
		}
		return err
	}
	fmt.Println(styles.RenderSuccess("deleted session " + pos[0]))
	return nil
}
