// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prices fetches market chart data for the assets the advisor
// talks about.
package prices

import (
	"fmt"
	"strings"
)

// sparkTicks are the vertical-bar glyphs a sparkline is built from,
// lowest to highest.
var sparkTicks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders a price series as a one-line unicode chart of the
// given width. The series is resampled to fit: each output column shows
// the mean of its bucket. A flat series renders at mid-height.
func Sparkline(points []Point, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}

	values := resample(points, width)

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	var b strings.Builder
	b.Grow(width * 3) // ticks are 3 bytes each

	span := hi - lo
	for _, v := range values {
		idx := len(sparkTicks) / 2
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkTicks)-1))
		}
		b.WriteRune(sparkTicks[idx])
	}

	return b.String()
}

// resample reduces or stretches a series to exactly width samples by
// bucket-averaging.
func resample(points []Point, width int) []float64 {
	values := make([]float64, width)
	n := len(points)

	for i := 0; i < width; i++ {
		start := i * n / width
		end := (i + 1) * n / width
		if end <= start {
			end = start + 1
		}
		if end > n {
			end = n
		}

		var sum float64
		for _, p := range points[start:end] {
			sum += p.Value
		}
		values[i] = sum / float64(end-start)
	}

	return values
}

// Summary describes a price series for the status line under a chart.
type Summary struct {
	First     float64
	Last      float64
	Low       float64
	High      float64
	ChangePct float64
}

// Summarize computes series statistics. An empty series yields a zero
// Summary.
func Summarize(points []Point) Summary {
	if len(points) == 0 {
		return Summary{}
	}

	s := Summary{
		First: points[0].Value,
		Last:  points[len(points)-1].Value,
		Low:   points[0].Value,
		High:  points[0].Value,
	}
	for _, p := range points {
		if p.Value < s.Low {
			s.Low = p.Value
		}
		if p.Value > s.High {
			s.High = p.Value
		}
	}
	if s.First != 0 {
		s.ChangePct = (s.Last - s.First) / s.First * 100
	}

	return s
}

// String formats the summary for display.
func (s Summary) String() string {
	return fmt.Sprintf("last %.4f  low %.4f  high %.4f  %+.2f%%", s.Last, s.Low, s.High, s.ChangePct)
}
