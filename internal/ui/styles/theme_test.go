// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewThemeInitializesStyles(t *testing.T) {
	theme := NewTheme()

	// Spot-check a few styles render without panicking and carry content.
	for name, got := range map[string]string{
		"Header":         theme.Header.Render("askton"),
		"QuestionBubble": theme.QuestionBubble.Render("question"),
		"AnswerBubble":   theme.AnswerBubble.Render("answer"),
		"StatusBar":      theme.StatusBar.Render("status"),
	} {
		if got == "" {
			t.Errorf("%s.Render() = empty string", name)
		}
	}
}

func TestLayoutModes(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}

	theme := NewTheme()
	for _, tt := range tests {
		theme.SetSize(tt.width, 40)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("GetLayoutMode() at width %d = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestStatusIndicatorsAreASCII(t *testing.T) {
	for _, s := range []string{
		StatusIndicators.Success,
		StatusIndicators.Error,
		StatusIndicators.Warning,
		StatusIndicators.Info,
		StatusIndicators.Pending,
	} {
		for _, r := range s {
			if r > 127 {
				t.Errorf("indicator %q contains non-ASCII rune %q", s, r)
			}
		}
	}
}

func TestRenderHelpersIncludeIndicator(t *testing.T) {
	if got := RenderSuccess("saved"); !strings.Contains(got, "[OK]") {
		t.Errorf("RenderSuccess() = %q, want [OK] included", got)
	}
	if got := RenderError("failed"); !strings.Contains(got, "[X]") {
		t.Errorf("RenderError() = %q, want [X] included", got)
	}
}
