// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Unified argument parsing for askton subcommands.
package cli

import (
	"strconv"
	"strings"
)

// ArgParser provides unified argument parsing for subcommands.
// It handles multiple flag formats consistently:
//   - Long flags: --flag value or --flag=value
//   - Boolean flags: --flag (no value needed)
//   - Positional arguments: arguments without flags
//   - Subcommand: first positional argument
type ArgParser struct {
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser creates an argument parser from raw arguments.
func NewArgParser(raw []string) *ArgParser {
	parser := &ArgParser{
		flags:      make(map[string]string),
		boolFlags:  make(map[string]bool),
		positional: make([]string, 0),
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]

		if strings.HasPrefix(arg, "-") {
			name := strings.TrimLeft(arg, "-")

			if strings.Contains(name, "=") {
				parts := strings.SplitN(name, "=", 2)
				if parts[1] == "true" || parts[1] == "false" {
					parser.boolFlags[parts[0]] = parts[1] == "true"
				} else {
					parser.flags[parts[0]] = parts[1]
				}
			} else if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") && isValueFlag(arg) {
				parser.flags[name] = raw[i+1]
				i++
			} else {
				parser.boolFlags[name] = true
			}
		} else {
			parser.positional = append(parser.positional, arg)
		}
		i++
	}

	return parser
}

// Subcommand returns the first positional argument, or "".
func (p *ArgParser) Subcommand() string {
	if len(p.positional) == 0 {
		return ""
	}
	return p.positional[0]
}

// Positional returns the positional arguments after the subcommand.
func (p *ArgParser) Positional() []string {
	if len(p.positional) <= 1 {
		return nil
	}
	return p.positional[1:]
}

// Flag returns the value of a string flag, or "" when absent.
func (p *ArgParser) Flag(name string) string {
	return p.flags[name]
}

// IntFlag returns a flag parsed as an integer, or the fallback.
func (p *ArgParser) IntFlag(name string, fallback int) int {
	v, ok := p.flags[name]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// BoolFlag returns whether a boolean flag was set.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[name]
}
