// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "testing"

func TestFollowControllerStartsFollowing(t *testing.T) {
	f := NewFollowController(0, 0)
	if !f.Following() {
		t.Error("Following() = false at start, want true")
	}
}

func TestFollowControllerThresholds(t *testing.T) {
	tests := []struct {
		name     string
		distance int
		want     bool
	}{
		{"at bottom", 0, true},
		{"just below follow threshold", 49, true},
		{"at follow threshold", 50, true}, // band start, keeps prior true
		{"mid band", 75, true},
		{"at release threshold", 100, true}, // band end, still unchanged
		{"just above release threshold", 101, false},
		{"far away", 500, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFollowController(50, 100)
			f.Observe(tt.distance)
			if got := f.Following(); got != tt.want {
				t.Errorf("Following() after Observe(%d) = %v, want %v", tt.distance, got, tt.want)
			}
		})
	}
}

func TestFollowControllerHysteresisBand(t *testing.T) {
	f := NewFollowController(50, 100)

	// Release by scrolling far up
	f.Observe(150)
	if f.Following() {
		t.Fatal("Following() = true after Observe(150), want false")
	}

	// Observations inside the band must not re-arm
	f.Observe(75)
	if f.Following() {
		t.Error("Following() = true after band observation, want false (unchanged)")
	}

	// Coming back near the bottom re-arms
	f.Observe(30)
	if !f.Following() {
		t.Error("Following() = false after Observe(30), want true")
	}

	// And the band keeps it armed
	f.Observe(75)
	if !f.Following() {
		t.Error("Following() = false after band observation, want true (unchanged)")
	}
}

func TestFollowControllerNegativeDistance(t *testing.T) {
	f := NewFollowController(50, 100)
	f.Observe(200)
	f.Observe(-5)

	if !f.Following() {
		t.Error("Following() = false after negative distance, want true")
	}
	if got := f.LastDistance(); got != 0 {
		t.Errorf("LastDistance() = %d, want 0", got)
	}
}

func TestFollowControllerDefaultFallbacks(t *testing.T) {
	// Inverted thresholds fall back to sane values rather than a dead band.
	f := NewFollowController(100, 50)
	f.Observe(300)
	if f.Following() {
		t.Error("Following() = true at distance 300, want false")
	}
	f.Observe(10)
	if !f.Following() {
		t.Error("Following() = false at distance 10, want true")
	}
}
