// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prices

import (
	"testing"
	"time"
	"unicode/utf8"
)

func series(values ...float64) []Point {
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Time: time.UnixMilli(int64(i) * 1000), Value: v}
	}
	return points
}

func TestSparklineWidth(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		width  int
		want   int // rune count
	}{
		{"exact fit", series(1, 2, 3, 4), 4, 4},
		{"downsampled", series(1, 2, 3, 4, 5, 6, 7, 8), 4, 4},
		{"stretched", series(1, 2), 6, 6},
		{"single point", series(5), 3, 3},
		{"empty series", nil, 10, 0},
		{"zero width", series(1, 2), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sparkline(tt.points, tt.width)
			if n := utf8.RuneCountInString(got); n != tt.want {
				t.Errorf("Sparkline() rune count = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestSparklineExtremes(t *testing.T) {
	got := []rune(Sparkline(series(1, 10), 2))
	if got[0] != '▁' {
		t.Errorf("lowest tick = %q, want %q", got[0], '▁')
	}
	if got[1] != '█' {
		t.Errorf("highest tick = %q, want %q", got[1], '█')
	}
}

func TestSparklineFlatSeries(t *testing.T) {
	got := []rune(Sparkline(series(5, 5, 5), 3))
	for i, r := range got {
		if r != sparkTicks[len(sparkTicks)/2] {
			t.Errorf("tick[%d] = %q, want mid-height %q", i, r, sparkTicks[len(sparkTicks)/2])
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(series(4.0, 6.0, 5.0))

	if s.First != 4.0 {
		t.Errorf("First = %v, want 4.0", s.First)
	}
	if s.Last != 5.0 {
		t.Errorf("Last = %v, want 5.0", s.Last)
	}
	if s.Low != 4.0 {
		t.Errorf("Low = %v, want 4.0", s.Low)
	}
	if s.High != 6.0 {
		t.Errorf("High = %v, want 6.0", s.High)
	}
	if s.ChangePct != 25.0 {
		t.Errorf("ChangePct = %v, want 25.0", s.ChangePct)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if got := Summarize(nil); got != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero Summary", got)
	}
}
