// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives conversation turns and the auto-follow scroll policy.
package session

// Default hysteresis thresholds, in rendered lines from the bottom edge.
// Inside the band nothing changes, which keeps the policy from oscillating
// when the viewport hovers near a threshold during fast content growth.
const (
	DefaultFollowBelow  = 50
	DefaultReleaseAbove = 100
)

// =============================================================================
// FOLLOW CONTROLLER
// =============================================================================

// FollowController decides whether the viewport should chase newly arriving
// content. Scroll-position observations move it: close to the bottom re-arms
// following, far from the bottom means the user has scrolled away and the
// view must not fight them, and the band in between changes nothing.
//
// The controller is pure state; it does not scroll anything itself. The
// Session consults it on every content growth event.
type FollowController struct {
	following    bool
	lastDistance int
	followBelow  int
	releaseAbove int
}

// NewFollowController creates a controller that starts in following mode.
// Non-positive or inverted thresholds fall back to the defaults.
func NewFollowController(followBelow, releaseAbove int) *FollowController {
	if followBelow <= 0 {
		followBelow = DefaultFollowBelow
	}
	if releaseAbove <= followBelow {
		releaseAbove = DefaultReleaseAbove
		if releaseAbove <= followBelow {
			releaseAbove = followBelow * 2
		}
	}

	return &FollowController{
		following:    true,
		followBelow:  followBelow,
		releaseAbove: releaseAbove,
	}
}

// Observe applies one scroll-position observation.
// distance is the gap between the viewport and the bottom of the content, in
// rendered lines; negative values are treated as zero.
func (f *FollowController) Observe(distance int) {
	if distance < 0 {
		distance = 0
	}
	f.lastDistance = distance

	switch {
	case distance < f.followBelow:
		f.following = true
	case distance > f.releaseAbove:
		f.following = false
	}
	// Inside the hysteresis band: no change
}

// Following reports whether new content should pull the viewport down.
func (f *FollowController) Following() bool {
	return f.following
}

// SetFollowing overrides the current decision. Used when an active stream
// re-affirms following as the user returns to the bottom edge.
func (f *FollowController) SetFollowing(v bool) {
	f.following = v
}

// LastDistance returns the most recently observed distance from the bottom.
func (f *FollowController) LastDistance() int {
	return f.lastDistance
}
