// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for the askton TUI.
//
// This file contains the rendering logic for the chat layout:
// header, transcript viewport, thinking indicator, input line, and
// status bar. The viewport height is the terminal height minus the
// measured chrome height, so the stacked view always fits exactly.
package chat

import (
	"github.com/charmbracelet/lipgloss"
)

// View renders the complete chat view.
// Layout: header + transcript viewport + thinking line + input + status bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	header := m.renderHeader()
	priceStrip := m.priceStrip.View()
	thinking := m.renderThinking()
	input := m.renderInput()
	status := m.statusBar.View()

	// The viewport was sized against chromeHeight; verify against the
	// actual rendered chrome and clamp if a component grew unexpectedly.
	transcript := m.viewport.View()
	available := m.height - lipgloss.Height(header) - lipgloss.Height(priceStrip) -
		lipgloss.Height(thinking) - lipgloss.Height(input) - lipgloss.Height(status)
	if available >= 1 && lipgloss.Height(transcript) != available {
		transcript = lipgloss.NewStyle().
			Height(available).
			MaxHeight(available).
			Width(m.width).
			Render(transcript)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		priceStrip,
		transcript,
		thinking,
		input,
		status,
	)
}

// renderHeader renders the one-line application header.
func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("askton")
	subtitle := m.theme.HeaderSubtitle.Render(" TON advisor")
	return m.theme.Header.Width(m.width).Render(title + subtitle)
}

// renderThinking renders the spinner line, blank when idle to keep the
// layout height stable.
func (m Model) renderThinking() string {
	if !m.spinner.IsActive() {
		return ""
	}
	return " " + m.spinner.View()
}

// renderInput renders the prompt and input line.
func (m Model) renderInput() string {
	prompt := m.theme.InputPrompt.Render("> ")
	return m.theme.InputContainer.Width(m.width).Render(prompt + m.input.View())
}

// chromeHeight returns the number of lines consumed by everything except
// the transcript viewport. One line each is always reserved for the
// thinking indicator and the price strip so the viewport does not jump
// when streaming starts or chart data arrives.
func (m Model) chromeHeight() int {
	header := lipgloss.Height(m.renderHeader())
	input := lipgloss.Height(m.renderInput())
	status := 1
	if m.statusBar != nil {
		status = lipgloss.Height(m.statusBar.View())
	}
	return header + input + status + 2
}
