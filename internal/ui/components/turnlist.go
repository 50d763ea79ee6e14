// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the askton TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/askton-tui/internal/turn"
	"github.com/jeranaias/askton-tui/internal/ui/styles"
)

// =============================================================================
// TURN LIST COMPONENT - Conversation transcript renderer
// =============================================================================

// TurnList renders a conversation transcript from turn snapshots.
// Questions render as right-leaning bubbles, answers as left-leaning ones.
// Completed answers pass through the markdown renderer; streaming answers
// render as plain wrapped text so partial markdown never flickers.
type TurnList struct {
	Width    int
	Markdown bool
	theme    *styles.Theme

	// Lazily built, rebuilt when the wrap width changes.
	renderer      *glamour.TermRenderer
	rendererWidth int
}

// NewTurnList creates a transcript renderer for the given theme.
func NewTurnList(theme *styles.Theme) *TurnList {
	return &TurnList{
		Width:    80,
		Markdown: true,
		theme:    theme,
	}
}

// SetWidth updates the available render width.
func (l *TurnList) SetWidth(width int) {
	l.Width = width
}

// SetMarkdown enables or disables markdown rendering of completed answers.
func (l *TurnList) SetMarkdown(enabled bool) {
	l.Markdown = enabled
}

// View renders the full transcript, one turn after another.
func (l *TurnList) View(snapshots []turn.Snapshot) string {
	if len(snapshots) == 0 {
		return l.renderEmpty()
	}

	blocks := make([]string, 0, len(snapshots)*2)
	for _, snap := range snapshots {
		blocks = append(blocks, l.renderQuestion(snap))
		blocks = append(blocks, l.renderAnswer(snap))
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// renderEmpty renders the placeholder shown before the first question.
func (l *TurnList) renderEmpty() string {
	hint := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render("Ask anything about TON. Try: \"what is the current TON price?\"")
	return "\n" + hint + "\n"
}

// ==========================================================================
// QUESTION BUBBLE
// ==========================================================================

func (l *TurnList) renderQuestion(snap turn.Snapshot) string {
	content := snap.Question
	if content == "" {
		content = "..."
	}

	maxContentWidth := l.contentWidth()
	wrapped := wordWrap(content, maxContentWidth)
	bubbleWidth := minInt(maxLineWidth(wrapped)+4, l.Width-4)

	bubble := l.theme.QuestionBubble.Width(bubbleWidth).Render(wrapped)
	label := l.theme.QuestionLabel.Render("you")

	return label + "\n" + bubble
}

// ==========================================================================
// ANSWER BUBBLE
// ==========================================================================

func (l *TurnList) renderAnswer(snap turn.Snapshot) string {
	switch snap.Status {
	case turn.StatusFailed:
		return l.renderError(snap)
	case turn.StatusPending:
		if snap.DisplayText == "" {
			return l.theme.AnswerPending.Render("...")
		}
	}

	content := snap.DisplayText
	if content == "" {
		content = "..."
	}

	maxContentWidth := l.contentWidth()

	var body string
	if snap.Status == turn.StatusComplete && l.Markdown {
		body = strings.TrimSpace(l.renderMarkdown(content, maxContentWidth))
	} else {
		body = wordWrap(content, maxContentWidth)
		if snap.Status == turn.StatusStreaming {
			body += l.theme.Spinner.Render(" _")
		}
	}

	bubbleWidth := minInt(maxLineWidth(body)+4, l.Width-4)
	return l.theme.AnswerBubble.Width(bubbleWidth).Render(body)
}

// renderError renders a failed turn as an error box.
func (l *TurnList) renderError(snap turn.Snapshot) string {
	msg := snap.ErrorMessage
	if msg == "" {
		msg = "request failed"
	}

	title := l.theme.ErrorTitle.Render(styles.StatusIndicators.Error + " Error")
	body := wordWrap(msg, l.contentWidth())
	return l.theme.ErrorBox.Width(minInt(maxLineWidth(body)+4, l.Width-4)).
		Render(title + "\n" + body)
}

// ==========================================================================
// MARKDOWN RENDERING
// ==========================================================================

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func (l *TurnList) renderMarkdown(content string, width int) string {
	if l.renderer == nil || l.rendererWidth != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			// Fallback to plain text if renderer initialization fails
			return wordWrap(content, width)
		}
		l.renderer = renderer
		l.rendererWidth = width
	}

	rendered, err := l.renderer.Render(content)
	if err != nil {
		return wordWrap(content, width)
	}
	return rendered
}

// contentWidth returns the usable width inside a bubble.
func (l *TurnList) contentWidth() int {
	w := l.Width - 12 // Account for margins and padding
	if w < 20 {
		w = 20
	}
	return w
}
