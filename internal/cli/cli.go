// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for askton.
package cli

import (
	"fmt"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdHistory
	CmdPrice
	CmdServe
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet      bool
	NoMarkdown bool
	ServerURL  string // Overrides the configured advisor base URL

	// Command-specific
	Query      string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `askton - terminal advisor for the TON ecosystem

Askton answers questions about TON through a streaming advisor service
and renders the conversation in your terminal.

Usage:
  askton                     Start TUI (default)
  askton ask "question"      Ask a single question
  askton chat                Interactive line-mode chat
  askton history [subcommand] Conversation history
  askton price [flags]       TON price chart
  askton serve               Run the bundled development server
  askton version             Show version
  askton help                Show this help

History Commands:
  askton history list               List saved sessions
  askton history show <session-id>  Show a session transcript
  askton history search <query>     Search questions and answers
  askton history delete <session-id> --confirm
                                    Delete a session

Price Command:
  askton price                      7-day TON price sparkline
    --asset SYMBOL                  Asset symbol (default: TON)
    --days N                        History window in days (default: 7)

Serve Command:
  askton serve                      Start the development advisor server
    --addr HOST:PORT                Listen address (default: 127.0.0.1:8990)
    --tps N                         Token pacing per second (default: 40)

Global Flags:
  --server URL               Advisor base URL (default: http://127.0.0.1:8990)
  --no-markdown              Disable markdown rendering of answers
  --quiet, -q                Suppress informational output

Environment:
  ASKTON_SERVER_URL          Advisor base URL
  ASKTON_HISTORY_DISABLED    Set to 1 to disable history persistence

Examples:
  askton ask "what is the TON coin supply?"
  echo "is staking worth it?" | askton ask
  askton price --days 30
  askton history search staking
`

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("askton %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// ParseArgs parses command-line arguments into a command and its args.
// The program name must already be stripped.
func ParseArgs(args []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(args)

	// If no remaining args, default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsed

	case "ask":
		parsed.Query = strings.TrimSpace(strings.Join(positionalOnly(remaining), " "))
		return CmdAsk, parsed

	case "chat":
		return CmdChat, parsed

	case "history", "sessions":
		if len(remaining) > 0 {
			parsed.Subcommand = remaining[0]
		}
		return CmdHistory, parsed

	case "price", "prices":
		return CmdPrice, parsed

	case "serve", "devserver":
		return CmdServe, parsed

	case "version", "--version", "-v":
		return CmdVersion, parsed

	case "help", "--help", "-h":
		return CmdHelp, parsed

	default:
		// Unknown word: treat the whole line as a question.
		parsed.Query = strings.TrimSpace(cmd + " " + strings.Join(remaining, " "))
		return CmdAsk, parsed
	}
}

// parseGlobalFlags extracts global flags, returning the remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var parsed Args
	remaining := make([]string, 0, len(args))

	i := 0
	for i < len(args) {
		switch arg := args[i]; arg {
		case "--quiet", "-q":
			parsed.Quiet = true
		case "--no-markdown":
			parsed.NoMarkdown = true
		case "--server":
			if i+1 < len(args) {
				parsed.ServerURL = args[i+1]
				i++
			}
		default:
			if strings.HasPrefix(arg, "--server=") {
				parsed.ServerURL = strings.TrimPrefix(arg, "--server=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsed
}

// positionalOnly filters out flag-like tokens.
func positionalOnly(args []string) []string {
	out := make([]string, 0, len(args))
	skip := false
	for _, arg := range args {
		if skip {
			skip = false
			continue
		}
		if strings.HasPrefix(arg, "-") {
			// Value-carrying flags consume the next token unless written
			// as --flag=value.
			if !strings.Contains(arg, "=") && isValueFlag(arg) {
				skip = true
			}
			continue
		}
		out = append(out, arg)
	}
	return out
}

// isValueFlag reports whether a flag takes a separate value argument.
func isValueFlag(flag string) bool {
	switch strings.TrimLeft(flag, "-") {
	case "server", "asset", "days", "width", "addr", "tps", "format", "lines":
		return true
	}
	return false
}
