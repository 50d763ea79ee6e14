// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the askton TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/askton-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT - Bottom status bar
// =============================================================================

// Status represents the current application status
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusThinking
	StatusError
	StatusIdle
)

// String returns the display string for the status
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusStreaming:
		return "Streaming..."
	case StatusThinking:
		return "Thinking..."
	case StatusError:
		return "Error"
	case StatusIdle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// Icon returns an icon for the status
// ACCESSIBILITY: Uses distinct shapes alongside colors for colorblind users
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusStreaming:
		return "~"
	case StatusThinking:
		return styles.StatusIndicators.Pending
	case StatusError:
		return styles.StatusIndicators.Error
	case StatusIdle:
		return "-"
	default:
		return "?"
	}
}

// StatusBar represents the bottom status bar
type StatusBar struct {
	Connected     bool   // Whether the advisor service is reachable
	ServerURL     string // Advisor base URL
	Status        Status // Current status
	Following     bool   // Whether the viewport is pinned to the bottom
	TurnCount     int    // Number of turns in the conversation
	Width         int    // Available width
	ShowShortcuts bool   // Show keyboard shortcuts
	theme         *styles.Theme
}

// NewStatusBar creates a new StatusBar component
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Connected:     false,
		ServerURL:     "",
		Status:        StatusReady,
		Following:     true,
		TurnCount:     0,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetStatus updates the current status
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// SetConnected updates the advisor reachability indicator
func (s *StatusBar) SetConnected(connected bool) {
	s.Connected = connected
}

// SetFollowing updates the scroll-follow indicator
func (s *StatusBar) SetFollowing(following bool) {
	s.Following = following
}

// SetTurnCount updates the conversation turn counter
func (s *StatusBar) SetTurnCount(count int) {
	s.TurnCount = count
}

// View renders the status bar
func (s *StatusBar) View() string {
	// Choose layout based on width
	if s.Width < 60 {
		return s.viewNarrow()
	}
	if s.Width < 100 {
		return s.viewMedium()
	}
	return s.viewWide()
}

// viewNarrow renders a compact status bar for narrow terminals
// Format: [ON|OFF] Status Follow
func (s *StatusBar) viewNarrow() string {
	parts := []string{}

	parts = append(parts, s.renderConnection(true))

	statusStyle := s.statusStyle()
	parts = append(parts, statusStyle.Render(s.Status.Icon()))

	parts = append(parts, s.renderFollow(true))

	separator := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" ")
	result := strings.Join(parts, separator)

	return s.theme.StatusBar.Width(s.Width).Render(result)
}

// viewMedium renders a medium-width status bar
// Format: ON | Status | N turns | Follow
func (s *StatusBar) viewMedium() string {
	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(" | ")

	parts := []string{
		s.renderConnection(true),
		s.statusStyle().Render(s.Status.Icon() + " " + s.Status.String()),
		s.renderTurnCount(),
		s.renderFollow(false),
	}

	return s.theme.StatusBar.Width(s.Width).Render(strings.Join(parts, separator))
}

// viewWide renders the full status bar with shortcuts
// Format: ONLINE url | Status | N turns | Follow | shortcuts
func (s *StatusBar) viewWide() string {
	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(" | ")

	parts := []string{
		s.renderConnection(false),
		s.statusStyle().Render(s.Status.Icon() + " " + s.Status.String()),
		s.renderTurnCount(),
		s.renderFollow(false),
	}

	left := strings.Join(parts, separator)

	if s.ShowShortcuts {
		shortcuts := s.renderShortcuts()
		gap := s.Width - lipgloss.Width(left) - lipgloss.Width(shortcuts) - 2
		if gap > 0 {
			left += strings.Repeat(" ", gap) + shortcuts
		}
	}

	return s.theme.StatusBar.Width(s.Width).Render(left)
}

// renderConnection renders the advisor reachability indicator.
func (s *StatusBar) renderConnection(compact bool) string {
	if s.Connected {
		label := "ONLINE"
		if compact {
			label = "ON"
		} else if s.ServerURL != "" {
			label = "ONLINE " + s.ServerURL
		}
		return s.theme.StatusOnline.Render(label)
	}
	label := "OFFLINE"
	if compact {
		label = "OFF"
	}
	return s.theme.StatusOffline.Render(label)
}

// renderFollow renders the scroll-follow indicator.
func (s *StatusBar) renderFollow(compact bool) string {
	if s.Following {
		label := "follow"
		if compact {
			label = "v"
		}
		return s.theme.StatusFollow.Render(label)
	}
	label := "scrolled"
	if compact {
		label = "^"
	}
	return s.theme.StatusReleased.Render(label)
}

// renderTurnCount renders the conversation turn counter.
func (s *StatusBar) renderTurnCount() string {
	noun := "turns"
	if s.TurnCount == 1 {
		noun = "turn"
	}
	return lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(fmt.Sprintf("%d %s", s.TurnCount, noun))
}

// renderShortcuts renders the keyboard shortcut hints.
func (s *StatusBar) renderShortcuts() string {
	pairs := [][2]string{
		{"enter", "send"},
		{"esc", "clear"},
		{"ctrl+c", "quit"},
	}

	rendered := make([]string, 0, len(pairs))
	for _, p := range pairs {
		rendered = append(rendered,
			s.theme.ShortcutKey.Render(p[0])+" "+s.theme.ShortcutDesc.Render(p[1]))
	}
	return strings.Join(rendered, "  ")
}

// statusStyle returns the foreground style matching the current status.
func (s *StatusBar) statusStyle() lipgloss.Style {
	switch s.Status {
	case StatusError:
		return lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	case StatusStreaming, StatusThinking:
		return lipgloss.NewStyle().Foreground(styles.Cyan)
	default:
		return lipgloss.NewStyle().Foreground(styles.Emerald)
	}
}
