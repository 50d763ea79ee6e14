// askton - a terminal advisor for the TON ecosystem.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/askton-tui/internal/advisor"
	"github.com/jeranaias/askton-tui/internal/cli"
	"github.com/jeranaias/askton-tui/internal/config"
	"github.com/jeranaias/askton-tui/internal/session"
	"github.com/jeranaias/askton-tui/internal/storage"
	"github.com/jeranaias/askton-tui/internal/ui/chat"
	"github.com/jeranaias/askton-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.ParseArgs(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if args.ServerURL != "" {
		cfg.Server.BaseURL = args.ServerURL
	}
	if args.NoMarkdown {
		cfg.UI.Markdown = false
	}

	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args, cfg)
	case cli.CmdAsk:
		err = cli.HandleAsk(args, cfg)
	case cli.CmdChat:
		err = cli.HandleChat(args, cfg)
	case cli.CmdHistory:
		err = cli.HandleHistory(args, cfg)
	case cli.CmdPrice:
		err = cli.HandlePrice(args, cfg)
	case cli.CmdServe:
		err = cli.HandleServe(args, cfg)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		cli.PrintUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI wires the streaming session to the Bubble Tea program and runs it.
func runTUI(args cli.Args, cfg *config.Config) error {
	// The TUI owns the terminal; the standard logger must never write to
	// stderr while it runs. Route it to the configured log file, or drop it.
	if closeLog := redirectLogging(cfg); closeLog != nil {
		defer closeLog()
	}

	theme := styles.NewTheme()

	clientCfg := advisor.DefaultConfig()
	clientCfg.BaseURL = cfg.Server.BaseURL
	if cfg.Server.TimeoutSecs > 0 {
		clientCfg.Timeout = cfg.Server.Timeout()
	}
	client := advisor.NewClientWithConfig(clientCfg)

	// History persistence is best-effort: the TUI runs without it.
	var store *storage.Store
	if cfg.Storage.Enabled {
		if s, err := storage.Open(cfg.Storage.Path); err == nil {
			store = s
			defer store.Close()
		} else if !args.Quiet {
			fmt.Fprintf(os.Stderr, "history disabled: %v\n", err)
		}
	}

	forwarder := chat.NewForwarder()
	sess := session.New(client, forwarder, session.Options{
		FollowBelow:  cfg.UI.FollowBelow,
		ReleaseAbove: cfg.UI.ReleaseAbove,
	})
	defer sess.Close()

	model := chat.New(sess, client, store, cfg, theme)
	program := tea.NewProgram(model, tea.WithAltScreen())
	forwarder.Attach(program)

	// Live-reload UI settings when the config file changes on disk.
	if watcher := watchConfig(program); watcher != nil {
		defer watcher.Close()
	}

	_, err := program.Run()
	return err
}

// redirectLogging points the standard logger at the configured log file.
// Returns a cleanup func, or nil when logging is fully discarded.
func redirectLogging(cfg *config.Config) func() {
	path := cfg.Log.Path
	if path == "" {
		if dir, err := config.ConfigDir(); err == nil {
			path = filepath.Join(dir, "askton.log")
		}
	}

	if path != "" && cfg.Log.Level == "debug" {
		_ = config.EnsureConfigDir()
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err == nil {
			log.SetOutput(f)
			return func() { f.Close() }
		}
	}

	log.SetOutput(io.Discard)
	return nil
}

// watchConfig starts a config file watcher feeding reloads into the program.
// Returns nil when the config file does not exist or cannot be watched.
func watchConfig(program *tea.Program) *config.Watcher {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	watcher, err := config.NewWatcher(path,
		func(updated *config.Config) {
			program.Send(chat.ConfigReloadedMsg{Markdown: updated.UI.Markdown})
		},
		nil)
	if err != nil {
		return nil
	}
	if err := watcher.Watch(); err != nil {
		watcher.Close()
		return nil
	}
	return watcher
}
